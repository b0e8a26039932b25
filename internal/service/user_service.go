package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/model"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrDuplicateUsername  = errors.New("用户名已存在")
	ErrProtectedUser      = errors.New("根管理员不可修改或删除")
	ErrUserFieldsRequired = errors.New("用户名、密码和姓名均不能为空")
)

// UserService 用户目录业务接口
type UserService interface {
	// Authenticate 用户名与密码均精确匹配（区分大小写）
	Authenticate(username, password string) (*model.User, error)
	Add(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error)
	ToggleAdmin(ctx context.Context, userID int) (*model.User, error)
	// Delete 删除用户并级联删除其全部出勤记录
	Delete(ctx context.Context, userID int) error
	List() []model.User
}

type userService struct {
	store  *LedgerStore
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(store *LedgerStore, logger *zap.Logger) UserService {
	return &userService{store: store, logger: logger}
}

// ────────────────────── Authenticate ──────────────────────

func (s *userService) Authenticate(username, password string) (*model.User, error) {
	var found *model.User
	s.store.View(func(users []model.User, _ []model.AttendanceRecord) {
		for i := range users {
			if users[i].Username == username && users[i].Password == password {
				u := users[i]
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, ErrAuthenticationFailed
	}
	return found, nil
}

// ────────────────────── Add ──────────────────────

func (s *userService) Add(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, ErrUserFieldsRequired
	}

	var created model.User
	err := s.store.Mutate(ctx, func(tx *LedgerTx) error {
		for _, u := range tx.Users {
			if u.Username == req.Username {
				return ErrDuplicateUsername
			}
		}

		created = model.User{
			ID:       nextUserID(tx.Users),
			Username: req.Username,
			Password: req.Password,
			Name:     req.Name,
			IsAdmin:  req.IsAdmin,
		}
		tx.Users = append(tx.Users, created)
		tx.TouchUsers()
		return nil
	})
	if err != nil {
		s.logger.Info("新增用户被拒绝", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("新增用户成功", zap.Int("user_id", created.ID), zap.String("username", created.Username))
	return &created, nil
}

// ────────────────────── ToggleAdmin ──────────────────────

func (s *userService) ToggleAdmin(ctx context.Context, userID int) (*model.User, error) {
	if userID == model.RootAdminID {
		return nil, ErrProtectedUser
	}

	var updated model.User
	err := s.store.Mutate(ctx, func(tx *LedgerTx) error {
		idx := findUser(tx.Users, userID)
		if idx < 0 {
			return ErrUserNotFound
		}
		tx.Users[idx].IsAdmin = !tx.Users[idx].IsAdmin
		tx.TouchUsers()
		updated = tx.Users[idx]
		return nil
	})
	if err != nil {
		s.logger.Info("切换管理员权限被拒绝", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("已切换管理员权限", zap.Int("user_id", userID), zap.Bool("is_admin", updated.IsAdmin))
	return &updated, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, userID int) error {
	if userID == model.RootAdminID {
		return ErrProtectedUser
	}

	removed := 0
	err := s.store.Mutate(ctx, func(tx *LedgerTx) error {
		idx := findUser(tx.Users, userID)
		if idx < 0 {
			return ErrUserNotFound
		}
		tx.Users = append(tx.Users[:idx], tx.Users[idx+1:]...)
		tx.TouchUsers()
		removed = deleteRecordsFor(tx, userID)
		return nil
	})
	if err != nil {
		s.logger.Info("删除用户被拒绝", zap.Int("user_id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("已删除用户", zap.Int("user_id", userID), zap.Int("records_removed", removed))
	return nil
}

// ────────────────────── 查询 ──────────────────────

func (s *userService) List() []model.User {
	var result []model.User
	s.store.View(func(users []model.User, _ []model.AttendanceRecord) {
		result = append(make([]model.User, 0, len(users)), users...)
	})
	return result
}

// ── 内部辅助方法 ──

func findUser(users []model.User, userID int) int {
	for i := range users {
		if users[i].ID == userID {
			return i
		}
	}
	return -1
}

// nextUserID 现有最大 ID + 1；空目录从 1 开始
func nextUserID(users []model.User) int {
	maxID := 0
	for _, u := range users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}
