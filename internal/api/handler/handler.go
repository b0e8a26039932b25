package handler

import (
	"go.uber.org/zap"

	"attendance-ledger/config"
	"attendance-ledger/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Attendance *AttendanceHandler
	Report     *ReportHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User, svc.Attendance),
		Attendance: NewAttendanceHandler(svc.Attendance, svc.Fence, cfg.Report.RecentLimit, logger),
		Report:     NewReportHandler(svc.Report, cfg.Report.DateLimit),
		Export:     NewExportHandler(svc.Report),
	}
}
