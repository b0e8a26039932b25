package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-ledger/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable 账本专用的迁移版本表，与同库其他应用互不干扰
const migrationsTable = "ledger_schema_migrations"

// RunMigrations 将 PostgreSQL 中的快照表升级到最新版本
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	before, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	if dirty {
		return fmt.Errorf("快照表迁移停留在 dirty 状态（版本 %d），需要人工处理", before)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("快照表已是最新版本", zap.Uint("version", before))
			return nil
		}
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	after, _, _ := m.Version()
	logger.Info("快照表迁移完成", zap.Uint("from", before), zap.Uint("to", after))
	return nil
}

// AutoMigrate SQLite 下使用 GORM 同步表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Snapshot{}); err != nil {
		return fmt.Errorf("同步表结构失败: %w", err)
	}
	return nil
}
