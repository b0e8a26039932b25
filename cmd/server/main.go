package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-ledger/config"
	"attendance-ledger/internal/api/handler"
	"attendance-ledger/internal/api/router"
	"attendance-ledger/internal/repository"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/database"
	applogger "attendance-ledger/pkg/logger"
	"attendance-ledger/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml 或 ./config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis：redis 存储后端必需；仅限流使用时连接失败降级运行
	var rdb *redis.Client
	if cfg.Store.Driver == config.StoreDriverRedis || cfg.RateLimit.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			if cfg.Store.Driver == config.StoreDriverRedis {
				logger.Fatal("Redis 连接失败", zap.Error(err))
			}
			logger.Warn("Redis 连接失败，限流功能将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 4. 选择快照持久化后端
	var db *gorm.DB
	var snapshots repository.SnapshotRepository
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		snapshots = repository.NewRedisSnapshotRepo(rdb)
	default:
		db, err = database.NewDB(cfg, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		logger.Info("数据库连接成功")
		snapshots = repository.NewSnapshotRepo(db)
	}
	repo := repository.NewRepository(snapshots)

	// 5. 加载账本（首次启动写入根管理员）
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	store := service.NewLedgerStore(repo.Snapshot, logger)
	err = store.Load(loadCtx, service.SeedAdmin{
		Username: cfg.Seed.AdminUsername,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
	})
	loadCancel()
	if err != nil {
		logger.Fatal("加载账本失败", zap.Error(err))
	}

	// 6. 依赖注入: Store → Service → Handler
	svc := service.NewService(cfg, store, logger)
	h := handler.NewHandler(cfg, svc, logger)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, svc.User, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
