package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"restostock/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status.
// It also makes log available to handlers through the request context.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		entry := log.WithContext(c.Request.Context())
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}
		if status >= 500 {
			entry.Errorw("http request", fields...)
			return
		}
		entry.Infow("http request", fields...)
	}
}
