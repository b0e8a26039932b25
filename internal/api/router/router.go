package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-ledger/config"
	"attendance-ledger/internal/api/handler"
	"attendance-ledger/internal/api/middleware"
	"attendance-ledger/internal/service"
	"attendance-ledger/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 或未启用限流时不做限流
func Setup(cfg *config.Config, h *handler.Handler, users service.UserService, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	if !cfg.RateLimit.Enabled {
		rdb = nil
	}
	ipLimiter := middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger)
	userLimiter := middleware.UserRateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger)

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", ipLimiter, h.Auth.Login)

		// 需要认证的路由：每个请求携带 Basic 凭证
		// 认证前按 IP 计数，认证后再按用户计数
		authorized := v1.Group("")
		authorized.Use(ipLimiter, middleware.BasicAuth(users), userLimiter)
		{
			// 出勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.GET("/me", h.Attendance.ListMine)
				attendance.GET("/today", h.Attendance.Today)
				attendance.POST("/check-in", h.Attendance.CheckIn)
				attendance.POST("/check-out", h.Attendance.CheckOut)
			}

			// 以下均为管理员功能
			admin := authorized.Group("")
			admin.Use(middleware.AdminOnly())
			{
				// 用户模块
				usersGroup := admin.Group("/users")
				{
					usersGroup.GET("", h.User.ListUsers)
					usersGroup.POST("", h.User.CreateUser)
					usersGroup.PUT("/:id/admin", h.User.ToggleAdmin)
					usersGroup.DELETE("/:id", h.User.DeleteUser)
				}

				// 报表模块
				admin.GET("/reports", h.Report.GetReport)

				// 导出模块
				export := admin.Group("/export")
				{
					export.GET("/attendance.csv", h.Export.ExportCSV)
					export.GET("/attendance.xlsx", h.Export.ExportXLSX)
				}
			}
		}
	}

	return r
}
