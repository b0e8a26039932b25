package model

// RootAdminID 根管理员 ID，不可删除、不可修改管理员标记
const RootAdminID = 1

// User 用户记录（持久化为 users 快照中的一项）
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"isAdmin"`
}

// IsRootAdmin 是否为根管理员
func (u *User) IsRootAdmin() bool { return u.ID == RootAdminID }
