package database

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-ledger/config"
)

func TestNewDB_SQLiteCreatesSnapshotTable(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{
			Driver:     config.StoreDriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "nested", "attendance.db"),
		},
		Log: config.LogConfig{Level: "info"},
	}

	db, err := NewDB(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB 应成功: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if !db.Migrator().HasTable("ledger_snapshots") {
		t.Error("期望已创建 ledger_snapshots 表")
	}
}

func TestNewDB_RedisDriverRejected(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverRedis}}
	if _, err := NewDB(cfg, zap.NewNop()); err == nil {
		t.Error("redis 驱动不应打开关系型数据库")
	}
}

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite(":memory:", &gorm.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite 应成功: %v", err)
	}
	if !db.Migrator().HasTable("ledger_snapshots") {
		t.Error("期望已创建 ledger_snapshots 表")
	}
}
