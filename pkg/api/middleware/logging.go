package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CR-8/clubcore/pkg/observability/logger"
)

// Logging logs every request with structured fields after it completes.
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := log.WithContext(c.Request.Context())
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, "query_string", query)
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request completed", fields...)
		case c.Writer.Status() >= 400:
			entry.Warn("request completed", fields...)
		default:
			entry.Info("request completed", fields...)
		}
	}
}
