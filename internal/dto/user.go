package dto

// ── 用户模块 DTO ──

// CreateUserRequest 新增用户请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=100"`
	Name     string `json:"name"     binding:"required,max=50"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	IsAdmin     bool   `json:"is_admin"`
	IsRootAdmin bool   `json:"is_root_admin"`
	TodayStatus string `json:"today_status,omitempty"`
}
