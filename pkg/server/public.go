package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/CR-8/clubcore/pkg/api"
	"github.com/CR-8/clubcore/pkg/api/middleware"
	"github.com/CR-8/clubcore/pkg/config"
	"github.com/CR-8/clubcore/pkg/observability/logger"
	"github.com/CR-8/clubcore/pkg/observability/metrics"
)

// PublicOptions carries the pieces wired into the public API engine.
type PublicOptions struct {
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	Metrics   *metrics.Registry
	Tracer    trace.Tracer
	Handlers  []*api.Handler
}

// NewPublicEngine builds the gin engine for the public API: the
// middleware stack followed by every resource handler mounted under
// /api.
func NewPublicEngine(log logger.Logger, opts PublicOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logging(log))
	engine.Use(middleware.Recovery(log))
	if opts.Tracer != nil {
		engine.Use(middleware.Tracing(opts.Tracer))
	}
	if opts.Metrics != nil {
		engine.Use(middleware.Metrics(opts.Metrics))
	}
	engine.Use(middleware.CORS(middleware.CORSConfig{
		Enabled:          opts.CORS.Enabled,
		AllowOrigins:     opts.CORS.AllowOrigins,
		AllowMethods:     opts.CORS.AllowMethods,
		AllowHeaders:     opts.CORS.AllowHeaders,
		AllowCredentials: opts.CORS.AllowCredentials,
		MaxAgeSeconds:    opts.CORS.MaxAgeSeconds,
	}))
	if opts.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: opts.RateLimit.RequestsPerSecond,
			Burst:             opts.RateLimit.Burst,
		})
		engine.Use(limiter.Middleware())
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	group := engine.Group("/api")
	for _, h := range opts.Handlers {
		h.Mount(group)
	}

	return engine
}
