package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CR-8/clubcore/pkg/observability/metrics"
)

// Metrics records Prometheus metrics for every request: a duration
// histogram, a request counter and an in-flight gauge.
func Metrics(registry *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		registry.IncInFlight()
		defer registry.DecInFlight()

		start := time.Now()
		c.Next()

		// FullPath keeps label cardinality bounded; unknown routes
		// collapse into a single label.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		registry.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
