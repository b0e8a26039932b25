package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"attendance-ledger/internal/model"
	"attendance-ledger/internal/repository"
	pkgerrors "attendance-ledger/pkg/errors"
)

// ErrPersistFailed 持久化失败，内存状态未提交
var ErrPersistFailed = errors.New("保存数据失败")

// SeedAdmin 首次启动时写入的根管理员
type SeedAdmin struct {
	Username string
	Password string
	Name     string
}

// LedgerStore 持有用户集合与出勤记录集合
//
// 所有写操作经由 Mutate 串行执行：在副本上修改，持久化成功后才替换内存状态，
// 因此任何失败都不会让内存与持久化数据不一致。
type LedgerStore struct {
	mu      sync.RWMutex
	users   []model.User
	records []model.AttendanceRecord
	repo    repository.SnapshotRepository
	logger  *zap.Logger
}

// NewLedgerStore 创建空的 LedgerStore，需调用 Load 从持久化后端恢复
func NewLedgerStore(repo repository.SnapshotRepository, logger *zap.Logger) *LedgerStore {
	return &LedgerStore{repo: repo, logger: logger}
}

// Load 读取 users 与 attendanceRecords 两个快照
// users 不存在时写入根管理员
func (s *LedgerStore) Load(ctx context.Context, seed SeedAdmin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, usersFound, err := loadCollection[model.User](ctx, s.repo, model.SnapshotKeyUsers)
	if err != nil {
		return err
	}
	records, _, err := loadCollection[model.AttendanceRecord](ctx, s.repo, model.SnapshotKeyRecords)
	if err != nil {
		return err
	}

	if !usersFound {
		users = []model.User{{
			ID:       model.RootAdminID,
			Username: seed.Username,
			Password: seed.Password,
			Name:     seed.Name,
			IsAdmin:  true,
		}}
		if err := saveCollection(ctx, s.repo, model.SnapshotKeyUsers, users); err != nil {
			return err
		}
		s.logger.Info("已初始化根管理员", zap.String("username", seed.Username))
	}

	s.users = users
	s.records = records

	s.logger.Info("账本加载完成",
		zap.Int("users", len(users)),
		zap.Int("records", len(records)),
	)
	return nil
}

// LedgerTx 一次写操作内可见的集合副本
type LedgerTx struct {
	Users   []model.User
	Records []model.AttendanceRecord

	usersDirty   bool
	recordsDirty bool
}

// TouchUsers 标记用户集合已修改
func (tx *LedgerTx) TouchUsers() { tx.usersDirty = true }

// TouchRecords 标记记录集合已修改
func (tx *LedgerTx) TouchRecords() { tx.recordsDirty = true }

// Mutate 在写锁内执行 fn
// fn 返回错误时丢弃副本；否则先持久化被修改的集合，再提交到内存
func (s *LedgerStore) Mutate(ctx context.Context, fn func(tx *LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &LedgerTx{
		Users:   append([]model.User(nil), s.users...),
		Records: append([]model.AttendanceRecord(nil), s.records...),
	}
	if err := fn(tx); err != nil {
		return err
	}

	// 先写记录再写用户：级联删除时不会留下孤立记录
	if tx.recordsDirty {
		if err := saveCollection(ctx, s.repo, model.SnapshotKeyRecords, tx.Records); err != nil {
			s.logger.Error("保存出勤记录失败", zap.Error(err))
			return fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}
	if tx.usersDirty {
		if err := saveCollection(ctx, s.repo, model.SnapshotKeyUsers, tx.Users); err != nil {
			s.logger.Error("保存用户失败", zap.Error(err))
			if tx.recordsDirty {
				// 回写旧记录，保持两个快照一致
				if rbErr := saveCollection(ctx, s.repo, model.SnapshotKeyRecords, s.records); rbErr != nil {
					s.logger.Error("回滚出勤记录失败", zap.Error(rbErr))
				}
			}
			return fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}

	if tx.usersDirty {
		s.users = tx.Users
	}
	if tx.recordsDirty {
		s.records = tx.Records
	}
	return nil
}

// View 在读锁内访问当前集合；fn 不得保留或修改传入的切片
func (s *LedgerStore) View(fn func(users []model.User, records []model.AttendanceRecord)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.users, s.records)
}

// ── 快照编解码 ──

func loadCollection[T any](ctx context.Context, repo repository.SnapshotRepository, key string) ([]T, bool, error) {
	raw, err := repo.Load(ctx, key)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrKeyNotFound) {
			return []T{}, false, nil
		}
		return nil, false, fmt.Errorf("读取快照 %s 失败: %w", key, err)
	}

	items := []T{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false, fmt.Errorf("解析快照 %s 失败: %w", key, err)
		}
	}
	if items == nil {
		// JSON null
		items = []T{}
	}
	return items, true, nil
}

func saveCollection[T any](ctx context.Context, repo repository.SnapshotRepository, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("序列化快照 %s 失败: %w", key, err)
	}
	return repo.Save(ctx, key, raw)
}
