package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/api/handler"
	"github.com/LDanielOchoa/Programacion-Areas/internal/api/middleware"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, verifier middleware.SessionVerifier, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if cfg.App.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	{
		// 员工与日期核对（只读，不需要区域会话）
		api.POST("/validate-employees", h.Programacion.ValidateEmployees)
		api.POST("/check-dates", h.Programacion.CheckDates)

		// 区域会话
		api.GET("/areas", h.AreaSession.ListAreas)
		areas := api.Group("/areas/:area/session")
		{
			areas.POST("", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.AreaSession.Login)
			areas.GET("", h.AreaSession.Check)
			areas.DELETE("", h.AreaSession.Logout)
		}

		// 写入与导出：启用区域认证时需要会话
		protected := api.Group("")
		if cfg.Feature.AreaAuthEnabled {
			protected.Use(middleware.AreaAuth(verifier))
		}
		{
			protected.POST("/save-schedule", h.Programacion.SaveSchedule)
			protected.POST("/save-novedades", h.Programacion.SaveNovedades)
			protected.GET("/export/schedule", h.Export.ExportSchedule)
		}
	}

	return r
}
