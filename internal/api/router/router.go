package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nischal456/my-attendance-system-sub000/config"
	"github.com/Nischal456/my-attendance-system-sub000/internal/api/handler"
	"github.com/Nischal456/my-attendance-system-sub000/internal/api/middleware"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/jwt"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/check-in", h.Attendance.CheckIn)
				attendance.POST("/break-in", h.Attendance.BreakIn)
				attendance.POST("/break-out", h.Attendance.BreakOut)
				attendance.POST("/check-out", h.Attendance.CheckOut)
				attendance.GET("/current", h.Attendance.GetCurrent)
				attendance.GET("/me", h.Attendance.ListMine)
				attendance.GET("/work-hours", h.Attendance.WorkHours)

				// 管理员修正 / 删除
				attendance.PUT("/:id/checkout-time", middleware.RoleAuth("admin"), h.Attendance.AdjustCheckout)
				attendance.DELETE("/:id", middleware.RoleAuth("admin"), h.Attendance.Delete)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListMine)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			// 员工管理模块（仅管理员）
			users := authorized.Group("/users", middleware.RoleAuth("admin"))
			{
				users.POST("", h.User.CreateUser)
				users.GET("", h.User.ListUsers)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 导出模块（仅管理员）
			export := authorized.Group("/export", middleware.RoleAuth("admin"))
			{
				export.GET("/work-hours", h.Export.ExportWorkHours)
			}
		}
	}

	return r
}
