package service

import (
	"go.uber.org/zap"

	"attendance-ledger/config"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Attendance AttendanceService
	Report     ReportService
	Fence      Fence
}

// NewService 创建 Service 聚合；store 须已完成 Load
func NewService(cfg *config.Config, store *LedgerStore, logger *zap.Logger) *Service {
	users := NewUserService(store, logger)
	attendance := NewAttendanceService(store, logger)

	return &Service{
		Auth:       NewAuthService(users, logger),
		User:       users,
		Attendance: attendance,
		Report:     NewReportService(attendance, cfg.Report.Locale, logger),
		Fence:      FenceFromConfig(&cfg.Geofence),
	}
}

// FenceFromConfig 由配置构造打卡围栏
func FenceFromConfig(cfg *config.GeofenceConfig) Fence {
	return Fence{
		Anchor:       Coordinate{Latitude: cfg.AnchorLatitude, Longitude: cfg.AnchorLongitude},
		RadiusMeters: cfg.RadiusMeters,
	}
}
