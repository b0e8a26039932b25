package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"attendance-ledger/internal/dto"
)

func setupTestAuthService(t *testing.T) AuthService {
	t.Helper()
	store, _ := setupTestStore(t)
	logger := zap.NewNop()
	return NewAuthService(NewUserService(store, logger), logger)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := setupTestAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.User.ID != 1 || !resp.User.IsAdmin || !resp.User.IsRootAdmin {
		t.Errorf("用户信息不正确: %+v", resp.User)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "nope"})
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("期望 ErrAuthenticationFailed，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ghost", Password: "admin123"})
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("期望 ErrAuthenticationFailed，实际: %v", err)
	}
}
