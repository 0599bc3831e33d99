package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwalitptl/petmatch-api/internal/handler"
	matchhandler "github.com/jwalitptl/petmatch-api/internal/handler/match"
	notificationhandler "github.com/jwalitptl/petmatch-api/internal/handler/notification"
	"github.com/jwalitptl/petmatch-api/internal/middleware"
)

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	notificationH *notificationhandler.Handler
	matchH        *matchhandler.Handler
	h             *handler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimitPerSecond float64
	RateBurst          int
	Timeout            time.Duration
	CORSConfig         middleware.CORSConfig
	MetricsPrefix      string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	notificationH *notificationhandler.Handler,
	matchH *matchhandler.Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		notificationH: notificationH,
		matchH:        matchH,
		h:             h,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(config.RateLimitPerSecond, config.RateBurst)
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupNotificationRoutes(protected)
	r.setupMatchRoutes(protected)

	admin := protected.Group("/admin")
	admin.Use(r.auth.RequireAdmin())
	r.setupAdminRoutes(admin)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", r.notificationH.List)
		notifications.GET("/stream", r.notificationH.Stream)
		notifications.POST("/message", r.notificationH.NotifyMessage)
		notifications.POST("/read-all", r.notificationH.MarkAllRead)
		notifications.POST("/cleanup", r.notificationH.Cleanup)
		notifications.POST("/:id/read", r.notificationH.MarkRead)
	}
}

func (r *Router) setupMatchRoutes(rg *gin.RouterGroup) {
	rg.GET("/pets", r.matchH.ListOwnPets)
	rg.GET("/match/candidates", r.matchH.ListCandidates)
	rg.POST("/match/interest", r.matchH.ShowInterest)

	sessions := rg.Group("/match/session")
	{
		sessions.POST("", r.matchH.StartSession)
		sessions.GET("", r.matchH.CurrentSession)
		sessions.POST("/like", r.matchH.Like)
		sessions.POST("/dislike", r.matchH.Dislike)
		sessions.POST("/acknowledge", r.matchH.Acknowledge)
		sessions.POST("/refresh", r.matchH.Refresh)
	}
}

func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("/invalid", r.notificationH.ListInvalid)
		notifications.POST("/invalid/delete", r.notificationH.DeleteInvalid)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
