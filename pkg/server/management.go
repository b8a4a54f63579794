package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CR-8/clubcore/pkg/api/middleware"
	"github.com/CR-8/clubcore/pkg/health"
	"github.com/CR-8/clubcore/pkg/observability/logger"
	"github.com/CR-8/clubcore/pkg/observability/metrics"
)

// NewManagementEngine builds the gin engine for the management server:
//
//	GET /health  liveness, always 200
//	GET /ready   readiness over the registered checks, 503 when failing
//	GET /metrics Prometheus exposition
func NewManagementEngine(log logger.Logger, healthRegistry *health.Registry, metricsRegistry *metrics.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/ready", func(c *gin.Context) {
		result := healthRegistry.Check(c.Request.Context())
		status := http.StatusOK
		if !result.IsHealthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})

	engine.GET("/metrics", gin.WrapH(metricsRegistry.Handler()))

	return engine
}
