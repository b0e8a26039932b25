package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance-ledger/internal/model"
	pkgerrors "attendance-ledger/pkg/errors"
	"attendance-ledger/pkg/redis"
)

// SnapshotRepository 集合快照的持久化接口
// Load 在键不存在时返回 pkgerrors.ErrKeyNotFound；Save 为整体幂等覆盖
type SnapshotRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// ── GORM 实现（PostgreSQL / SQLite）──

type snapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepo 创建基于 GORM 的 SnapshotRepository
func NewSnapshotRepo(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Load(ctx context.Context, key string) ([]byte, error) {
	var snap model.Snapshot
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(snap.Value), nil
}

func (r *snapshotRepo) Save(ctx context.Context, key string, value []byte) error {
	now := time.Now()
	snap := &model.Snapshot{
		Key:       key,
		Value:     string(value),
		BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now},
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(snap).Error
}

// ── Redis 实现 ──

type redisSnapshotRepo struct {
	client *redis.Client
}

// NewRedisSnapshotRepo 创建基于 Redis 的 SnapshotRepository
func NewRedisSnapshotRepo(client *redis.Client) SnapshotRepository {
	return &redisSnapshotRepo{client: client}
}

func (r *redisSnapshotRepo) Load(ctx context.Context, key string) ([]byte, error) {
	return r.client.GetSnapshot(ctx, key)
}

func (r *redisSnapshotRepo) Save(ctx context.Context, key string, value []byte) error {
	return r.client.SetSnapshot(ctx, key, value)
}
