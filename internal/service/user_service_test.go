package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"attendance-ledger/internal/dto"
	"attendance-ledger/internal/model"
)

// ── 测试辅助 ──

func setupTestUserService(t *testing.T) (UserService, AttendanceService, *mockSnapshotRepo) {
	t.Helper()
	store, repo := setupTestStore(t)
	logger := zap.NewNop()
	return NewUserService(store, logger), NewAttendanceService(store, logger), repo
}

func addTestUser(t *testing.T, svc UserService, username, name string) *model.User {
	t.Helper()
	u, err := svc.Add(context.Background(), &dto.CreateUserRequest{
		Username: username,
		Password: "pw1234",
		Name:     name,
	})
	if err != nil {
		t.Fatalf("Add %s 应成功: %v", username, err)
	}
	return u
}

// ── Authenticate 测试 ──

func TestUserService_Authenticate(t *testing.T) {
	svc, _, _ := setupTestUserService(t)

	u, err := svc.Authenticate("admin", "admin123")
	if err != nil {
		t.Fatalf("正确凭证应认证成功: %v", err)
	}
	if u.ID != model.RootAdminID {
		t.Errorf("期望根管理员，实际 ID=%d", u.ID)
	}

	if _, err := svc.Authenticate("admin", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("错误密码应返回 ErrAuthenticationFailed，实际: %v", err)
	}
	if _, err := svc.Authenticate("Admin", "admin123"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("用户名区分大小写，实际: %v", err)
	}
}

// ── Add 测试 ──

func TestUserService_Add_AllocatesNextID(t *testing.T) {
	svc, _, repo := setupTestUserService(t)

	kim := addTestUser(t, svc, "kim", "김철수")
	if kim.ID != 2 {
		t.Errorf("期望 ID=2，实际=%d", kim.ID)
	}
	if kim.IsAdmin {
		t.Error("默认不应为管理员")
	}
	lee := addTestUser(t, svc, "lee", "이영희")
	if lee.ID != 3 {
		t.Errorf("期望 ID=3，实际=%d", lee.ID)
	}
	if got := len(repo.users(t)); got != 3 {
		t.Errorf("期望持久化 3 个用户，实际=%d", got)
	}
}

func TestUserService_Add_IDAfterDeleteNotReusedBelowMax(t *testing.T) {
	svc, _, _ := setupTestUserService(t)
	addTestUser(t, svc, "kim", "김철수")
	lee := addTestUser(t, svc, "lee", "이영희")

	if err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	park := addTestUser(t, svc, "park", "박민수")
	if park.ID != lee.ID+1 {
		t.Errorf("期望 ID=%d，实际=%d", lee.ID+1, park.ID)
	}
}

func TestUserService_Add_Duplicate(t *testing.T) {
	svc, _, _ := setupTestUserService(t)

	_, err := svc.Add(context.Background(), &dto.CreateUserRequest{Username: "admin", Password: "x", Name: "x"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("期望 ErrDuplicateUsername，实际: %v", err)
	}
	if got := len(svc.List()); got != 1 {
		t.Errorf("目录应保持不变，实际=%d", got)
	}
}

func TestUserService_Add_MissingFields(t *testing.T) {
	svc, _, _ := setupTestUserService(t)

	_, err := svc.Add(context.Background(), &dto.CreateUserRequest{Username: "kim", Password: "pw", Name: "  "})
	if !errors.Is(err, ErrUserFieldsRequired) {
		t.Errorf("期望 ErrUserFieldsRequired，实际: %v", err)
	}
}

// ── ToggleAdmin 测试 ──

func TestUserService_ToggleAdmin(t *testing.T) {
	svc, _, _ := setupTestUserService(t)
	kim := addTestUser(t, svc, "kim", "김철수")

	u, err := svc.ToggleAdmin(context.Background(), kim.ID)
	if err != nil {
		t.Fatalf("ToggleAdmin 应成功: %v", err)
	}
	if !u.IsAdmin {
		t.Error("期望切换为管理员")
	}
	u, _ = svc.ToggleAdmin(context.Background(), kim.ID)
	if u.IsAdmin {
		t.Error("再次切换应取消管理员")
	}
}

func TestUserService_ToggleAdmin_RootProtected(t *testing.T) {
	svc, _, _ := setupTestUserService(t)

	if _, err := svc.ToggleAdmin(context.Background(), model.RootAdminID); !errors.Is(err, ErrProtectedUser) {
		t.Errorf("期望 ErrProtectedUser，实际: %v", err)
	}
	if root := lookupUser(svc, model.RootAdminID); root == nil || !root.IsAdmin {
		t.Error("根管理员权限不应变化")
	}
}

func TestUserService_ToggleAdmin_NotFound(t *testing.T) {
	svc, _, _ := setupTestUserService(t)

	if _, err := svc.ToggleAdmin(context.Background(), 42); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestUserService_Delete_CascadesRecords(t *testing.T) {
	users, attendance, repo := setupTestUserService(t)
	ctx := context.Background()
	kim := addTestUser(t, users, "kim", "김철수")

	for _, in := range []*CheckInInput{
		{UserID: kim.ID, UserName: kim.Name, Date: "2024-01-09", Time: "09:00:00", Decision: LocationWithinRange},
		{UserID: kim.ID, UserName: kim.Name, Date: "2024-01-10", Time: "09:00:00", Decision: LocationWithinRange},
		{UserID: model.RootAdminID, UserName: "관리자", Date: "2024-01-10", Time: "08:00:00", Decision: LocationWithinRange},
	} {
		if _, err := attendance.CheckIn(ctx, in); err != nil {
			t.Fatalf("准备签到数据失败: %v", err)
		}
	}

	if err := users.Delete(ctx, kim.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if lookupUser(users, kim.ID) != nil {
		t.Error("用户应已从目录中删除")
	}
	for _, r := range repo.records(t) {
		if r.UserID == kim.ID {
			t.Errorf("不应残留被删除用户的记录: %+v", r)
		}
	}
	if got := len(attendance.AllRecords()); got != 1 {
		t.Errorf("其他用户的记录应保留，期望 1，实际=%d", got)
	}
}

func TestUserService_Delete_RootProtected(t *testing.T) {
	svc, _, _ := setupTestUserService(t)

	if err := svc.Delete(context.Background(), model.RootAdminID); !errors.Is(err, ErrProtectedUser) {
		t.Errorf("期望 ErrProtectedUser，实际: %v", err)
	}
}

func TestUserService_Delete_PersistFailureKeepsUser(t *testing.T) {
	svc, _, repo := setupTestUserService(t)
	kim := addTestUser(t, svc, "kim", "김철수")
	repo.failSave(model.SnapshotKeyUsers)

	if err := svc.Delete(context.Background(), kim.ID); !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("期望 ErrPersistFailed，实际: %v", err)
	}
	if lookupUser(svc, kim.ID) == nil {
		t.Error("持久化失败时用户应仍然存在")
	}
}

// lookupUser 通过 List 查找用户，不存在时返回 nil
func lookupUser(svc UserService, id int) *model.User {
	for _, u := range svc.List() {
		if u.ID == id {
			return &u
		}
	}
	return nil
}
