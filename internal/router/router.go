package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/brightwood-school/bwps-api/internal/handler"
	"github.com/brightwood-school/bwps-api/internal/middleware"
	"github.com/brightwood-school/bwps-api/internal/service"
	"github.com/brightwood-school/bwps-api/pkg/config"
	"github.com/brightwood-school/bwps-api/pkg/logger"
	corsmiddleware "github.com/brightwood-school/bwps-api/pkg/middleware/cors"
	reqidmiddleware "github.com/brightwood-school/bwps-api/pkg/middleware/requestid"
	"github.com/brightwood-school/bwps-api/pkg/session"
)

// Handlers bundles everything the router mounts. Exports may be nil when
// the export pipeline is disabled.
type Handlers struct {
	Auth       *handler.AuthHandler
	Admins     *handler.AdminHandler
	Admissions *handler.AdmissionHandler
	Notices    *handler.NoticeHandler
	Inquiries  *handler.InquiryHandler
	Exports    *handler.ExportHandler
	Metrics    *handler.MetricsHandler
}

// New assembles the gin engine: global middleware, the access gate and all
// public and session-guarded routes under the configured API prefix.
func New(cfg *config.Config, logr *zap.Logger, codec *session.Codec, metricsSvc *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}
	r.Use(middleware.AccessGate(cfg.Gate, codec, cfg.Session.CookieName))

	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface: the application form, tracking, the notice board and
	// the contact form need no session.
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/admissions", h.Admissions.Create)
	api.GET("/admissions/track/:number", h.Admissions.Track)
	api.GET("/notices", h.Notices.ListPublic)
	api.GET("/notices/slug/:slug", h.Notices.GetBySlug)
	api.POST("/notices/:id/views", h.Notices.RecordView)
	api.POST("/inquiries", h.Inquiries.Create)
	if h.Exports != nil {
		// Download links carry their own signed, expiring token.
		api.GET("/exports/download", h.Exports.Download)
	}

	secured := api.Group("", middleware.RequireSession(codec, cfg.Session.CookieName))

	auth := secured.Group("/auth")
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)
	auth.PUT("/password", h.Auth.ChangePassword)

	// Account management is reserved for super admins.
	admins := secured.Group("/admins", middleware.RequireRole("SUPER_ADMIN"))
	admins.GET("", h.Admins.List)
	admins.POST("", h.Admins.Create)
	admins.DELETE("", h.Admins.BulkDelete)
	admins.GET("/:id", h.Admins.Get)
	admins.PUT("/:id", h.Admins.Update)
	admins.DELETE("/:id", h.Admins.Delete)
	admins.PATCH("/:id/toggle-status", h.Admins.ToggleStatus)
	admins.POST("/:id/reset-password", h.Admins.ResetPassword)

	admin := secured.Group("/admin")

	admissions := admin.Group("/admissions")
	admissions.GET("", h.Admissions.List)
	admissions.GET("/:id", h.Admissions.Get)
	admissions.PATCH("/:id/status", h.Admissions.UpdateStatus)
	admissions.POST("/bulk-status", h.Admissions.BulkUpdateStatus)
	admissions.DELETE("/:id", middleware.RequireRole("SUPER_ADMIN", "ADMIN"), h.Admissions.Delete)

	notices := admin.Group("/notices")
	notices.GET("", h.Notices.List)
	notices.POST("", h.Notices.Create)
	notices.GET("/:id", h.Notices.Get)
	notices.PUT("/:id", h.Notices.Update)
	notices.DELETE("/:id", h.Notices.Delete)
	notices.POST("/:id/attachments", h.Notices.AddAttachment)
	notices.DELETE("/:id/attachments/:attachmentId", h.Notices.DeleteAttachment)

	inquiries := admin.Group("/inquiries")
	inquiries.GET("", h.Inquiries.List)
	inquiries.GET("/:id", h.Inquiries.Get)
	inquiries.PATCH("/:id/status", h.Inquiries.UpdateStatus)
	inquiries.DELETE("/:id", h.Inquiries.Delete)

	stats := admin.Group("/stats")
	stats.GET("/admissions", h.Admissions.Stats)
	stats.GET("/admins", middleware.RequireRole("SUPER_ADMIN"), h.Admins.Stats)

	if h.Exports != nil {
		exports := admin.Group("/exports")
		exports.POST("", h.Exports.Create)
		exports.GET("/:id", h.Exports.Get)
	}

	admin.GET("/metrics", h.Metrics.Snapshot)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "NOT_FOUND",
			"message": "Route not found",
			"status":  http.StatusNotFound,
		}})
	})

	return r
}
