package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"attendance-ledger/internal/model"
	pkgerrors "attendance-ledger/pkg/errors"
)

// ── Mock SnapshotRepository ──

type mockSnapshotRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   map[string]int
	saveErr map[string]error // 指定 key 的 Save 返回错误
	loadErr error
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{
		data:    make(map[string][]byte),
		saves:   make(map[string]int),
		saveErr: make(map[string]error),
	}
}

func (m *mockSnapshotRepo) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, pkgerrors.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *mockSnapshotRepo) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveErr[key]; err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), value...)
	m.saves[key]++
	return nil
}

func (m *mockSnapshotRepo) failSave(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr[key] = errors.New("disk full")
}

func (m *mockSnapshotRepo) put(t *testing.T, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("序列化测试数据失败: %v", err)
	}
	m.data[key] = raw
}

func (m *mockSnapshotRepo) records(t *testing.T) []model.AttendanceRecord {
	t.Helper()
	var out []model.AttendanceRecord
	if raw, ok := m.data[model.SnapshotKeyRecords]; ok {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("解析记录快照失败: %v", err)
		}
	}
	return out
}

func (m *mockSnapshotRepo) users(t *testing.T) []model.User {
	t.Helper()
	var out []model.User
	if raw, ok := m.data[model.SnapshotKeyUsers]; ok {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("解析用户快照失败: %v", err)
		}
	}
	return out
}

// ── 测试辅助 ──

var testSeed = SeedAdmin{Username: "admin", Password: "admin123", Name: "관리자"}

// setupTestStore 创建已加载（仅含根管理员）的账本
func setupTestStore(t *testing.T) (*LedgerStore, *mockSnapshotRepo) {
	t.Helper()
	repo := newMockSnapshotRepo()
	store := NewLedgerStore(repo, zap.NewNop())
	if err := store.Load(context.Background(), testSeed); err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	return store, repo
}

func strPtr(s string) *string { return &s }
