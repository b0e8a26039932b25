package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/model"
)

// ErrAuthenticationFailed 用户名或密码错误
var ErrAuthenticationFailed = errors.New("用户名或密码错误")

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	users  UserService
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(users UserService, logger *zap.Logger) AuthService {
	return &authService{users: users, logger: logger}
}

func (s *authService) Login(_ context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		s.logger.Info("登录失败", zap.String("username", req.Username))
		return nil, err
	}

	s.logger.Info("登录成功", zap.Int("user_id", user.ID))
	return &dto.LoginResponse{User: ToUserResponse(user, "")}, nil
}

// ToUserResponse 转换为对外的用户信息（不含密码）
func ToUserResponse(u *model.User, today TodayStatus) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		IsAdmin:     u.IsAdmin,
		IsRootAdmin: u.IsRootAdmin(),
		TodayStatus: string(today),
	}
}
