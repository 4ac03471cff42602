package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sharath018/expo-event-service/config"
	_ "github.com/sharath018/expo-event-service/docs"
	"github.com/sharath018/expo-event-service/internal/auditlog"
	"github.com/sharath018/expo-event-service/internal/event"
	"github.com/sharath018/expo-event-service/internal/reports"
	"github.com/sharath018/expo-event-service/middleware"
)

// Handlers are the HTTP entry points mounted under /api/v1.
type Handlers struct {
	Events  *event.Handler
	Reports *reports.Handler
	Audit   *auditlog.Handler
}

// Options carry what the router needs besides the handlers. Redis is
// optional; without it the rate limiter counts in memory.
type Options struct {
	Config      *config.Config
	Permissions middleware.PermissionChecker
	Redis       *redis.Client
	Gatherer    prometheus.Gatherer
}

func Setup(r *gin.Engine, opts Options, h Handlers) error {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	limit, err := middleware.RateLimiter(opts.Config.RateLimit, opts.Redis)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	api := r.Group("/api/v1")
	api.Use(limit)                        // Global rate limit per IP
	api.Use(middleware.AuditMiddleware()) // Audit middleware to capture IP

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(opts.Config.JWTAccessSecret))
	protected.Use(middleware.RequireOrganization())

	perm := func(permissions ...string) gin.HandlerFunc {
		return middleware.RequirePermission(opts.Permissions, permissions...)
	}

	// ========== Events ==========
	events := protected.Group("/events")
	{
		events.POST("", perm(middleware.PermEventCreate), h.Events.CreateEvent)
		events.GET("", perm(middleware.PermEventView), h.Events.GetEvent)
		events.PUT("", perm(middleware.PermEventUpdate), h.Events.UpdateEvent)
		events.DELETE("", perm(middleware.PermEventDelete), h.Events.DeleteEvent)

		events.GET("/url-check", perm(middleware.PermEventCreate, middleware.PermEventUpdate), h.Events.CheckURL)
		events.POST("/all", perm(middleware.PermEventView), h.Events.QueryEvents)
		events.PUT("/status", perm(middleware.PermEventPublish), h.Events.ChangeStatus)
		events.GET("/organization/:id", perm(middleware.PermEventView), h.Events.ListForOrganization)

		if h.Reports != nil {
			events.GET("/export", perm(middleware.PermEventView), h.Reports.ExportEvents)
		}
		if h.Audit != nil {
			events.GET("/:id/audit", perm(middleware.PermEventView), h.Audit.GetEventAuditLogs)
		}
	}

	return nil
}
