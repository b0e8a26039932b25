package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"attendance-ledger/internal/model"
)

// ── Load 测试 ──

func TestLedgerStore_Load_SeedsRootAdmin(t *testing.T) {
	_, repo := setupTestStore(t)

	users := repo.users(t)
	if len(users) != 1 {
		t.Fatalf("期望写入 1 个根管理员，实际=%d", len(users))
	}
	u := users[0]
	if u.ID != model.RootAdminID || u.Username != "admin" || u.Password != "admin123" || !u.IsAdmin {
		t.Errorf("根管理员字段不正确: %+v", u)
	}
	if u.Name != "관리자" {
		t.Errorf("期望 Name=관리자，实际=%s", u.Name)
	}
}

func TestLedgerStore_Load_ExistingUsersNotReseeded(t *testing.T) {
	repo := newMockSnapshotRepo()
	repo.put(t, model.SnapshotKeyUsers, []model.User{
		{ID: 1, Username: "boss", Password: "pw", Name: "Boss", IsAdmin: true},
		{ID: 2, Username: "kim", Password: "pw", Name: "Kim"},
	})
	store := NewLedgerStore(repo, zap.NewNop())

	if err := store.Load(context.Background(), testSeed); err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if repo.saves[model.SnapshotKeyUsers] != 0 {
		t.Error("已存在 users 快照时不应重写")
	}

	var count int
	store.View(func(users []model.User, _ []model.AttendanceRecord) { count = len(users) })
	if count != 2 {
		t.Errorf("期望 2 个用户，实际=%d", count)
	}
}

func TestLedgerStore_Load_EmptyUsersArrayNotReseeded(t *testing.T) {
	repo := newMockSnapshotRepo()
	repo.data[model.SnapshotKeyUsers] = []byte("[]")
	store := NewLedgerStore(repo, zap.NewNop())

	if err := store.Load(context.Background(), testSeed); err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	var count int
	store.View(func(users []model.User, _ []model.AttendanceRecord) { count = len(users) })
	if count != 0 {
		t.Errorf("users 键存在时不应写入根管理员，实际=%d", count)
	}
}

func TestLedgerStore_Load_LegacyRecords(t *testing.T) {
	repo := newMockSnapshotRepo()
	repo.data[model.SnapshotKeyRecords] = []byte(`[
		{"userId":1,"userName":"관리자","date":"2024-01-10","checkInTime":"09:00:00","checkOutTime":"18:00:00"},
		{"userId":1,"userName":"관리자","date":"2024-01-11","checkInTime":"09:00:00","checkOutTime":""}
	]`)
	store := NewLedgerStore(repo, zap.NewNop())
	if err := store.Load(context.Background(), testSeed); err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}

	var records []model.AttendanceRecord
	store.View(func(_ []model.User, rs []model.AttendanceRecord) {
		records = append(records, rs...)
	})
	if len(records) != 2 {
		t.Fatalf("期望 2 条记录，实际=%d", len(records))
	}
	if records[0].Status != model.StatusPresent {
		t.Errorf("缺少 status 应视为 present，实际=%s", records[0].Status)
	}
	if !records[1].IsOpen() {
		t.Error("空 checkOutTime 应视为未签退")
	}
}

func TestLedgerStore_Load_CorruptSnapshot(t *testing.T) {
	repo := newMockSnapshotRepo()
	repo.data[model.SnapshotKeyRecords] = []byte("{not json")
	store := NewLedgerStore(repo, zap.NewNop())

	if err := store.Load(context.Background(), testSeed); err == nil {
		t.Error("损坏的快照应返回错误")
	}
}

// ── Mutate 测试 ──

func TestLedgerStore_Mutate_PersistsBeforeCommit(t *testing.T) {
	store, repo := setupTestStore(t)

	err := store.Mutate(context.Background(), func(tx *LedgerTx) error {
		tx.Records = append(tx.Records, model.AttendanceRecord{UserID: 1, Date: "2024-01-10", CheckInTime: "09:00:00", Status: model.StatusPresent})
		tx.TouchRecords()
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate 应成功: %v", err)
	}
	if got := len(repo.records(t)); got != 1 {
		t.Errorf("期望持久化 1 条记录，实际=%d", got)
	}
}

func TestLedgerStore_Mutate_FnErrorDiscardsChanges(t *testing.T) {
	store, repo := setupTestStore(t)
	sentinel := errors.New("业务拒绝")

	err := store.Mutate(context.Background(), func(tx *LedgerTx) error {
		tx.Records = append(tx.Records, model.AttendanceRecord{UserID: 1})
		tx.TouchRecords()
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("期望返回业务错误，实际: %v", err)
	}
	if repo.saves[model.SnapshotKeyRecords] != 0 {
		t.Error("业务错误时不应写入持久化")
	}
	store.View(func(_ []model.User, records []model.AttendanceRecord) {
		if len(records) != 0 {
			t.Errorf("内存状态不应被修改，实际=%d", len(records))
		}
	})
}

func TestLedgerStore_Mutate_PersistFailureLeavesMemoryUnchanged(t *testing.T) {
	store, repo := setupTestStore(t)
	repo.failSave(model.SnapshotKeyRecords)

	err := store.Mutate(context.Background(), func(tx *LedgerTx) error {
		tx.Records = append(tx.Records, model.AttendanceRecord{UserID: 1})
		tx.TouchRecords()
		return nil
	})
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("期望 ErrPersistFailed，实际: %v", err)
	}
	store.View(func(_ []model.User, records []model.AttendanceRecord) {
		if len(records) != 0 {
			t.Errorf("持久化失败后内存不应变化，实际=%d", len(records))
		}
	})
}

func TestLedgerStore_Mutate_UsersFailureRollsBackRecords(t *testing.T) {
	store, repo := setupTestStore(t)
	if err := store.Mutate(context.Background(), func(tx *LedgerTx) error {
		tx.Records = append(tx.Records, model.AttendanceRecord{UserID: 1, Date: "2024-01-10"})
		tx.TouchRecords()
		return nil
	}); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}

	repo.failSave(model.SnapshotKeyUsers)
	err := store.Mutate(context.Background(), func(tx *LedgerTx) error {
		tx.Records = tx.Records[:0]
		tx.TouchRecords()
		tx.Users = append(tx.Users, model.User{ID: 2, Username: "kim"})
		tx.TouchUsers()
		return nil
	})
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("期望 ErrPersistFailed，实际: %v", err)
	}
	if got := len(repo.records(t)); got != 1 {
		t.Errorf("用户保存失败后记录快照应回滚，实际=%d", got)
	}
	store.View(func(users []model.User, records []model.AttendanceRecord) {
		if len(users) != 1 || len(records) != 1 {
			t.Errorf("内存状态应保持不变: users=%d records=%d", len(users), len(records))
		}
	})
}

func TestLedgerStore_Mutate_UntouchedCollectionsNotSaved(t *testing.T) {
	store, repo := setupTestStore(t)
	before := repo.saves[model.SnapshotKeyUsers]

	if err := store.Mutate(context.Background(), func(tx *LedgerTx) error { return nil }); err != nil {
		t.Fatalf("Mutate 应成功: %v", err)
	}
	if repo.saves[model.SnapshotKeyUsers] != before || repo.saves[model.SnapshotKeyRecords] != 0 {
		t.Error("未修改的集合不应写入")
	}
}
