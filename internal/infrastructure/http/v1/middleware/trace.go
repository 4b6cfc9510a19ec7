package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "restostock/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace middleware adds request tracing context.
// An incoming X-Request-ID is kept; trace ids come from the active span if any.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext(c.Request.Context(), c.GetHeader(HeaderRequestID))
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			trace.TraceID = traceID
		}

		ctx := appctx.WithTrace(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", trace.TraceID)
		c.Set("request_id", trace.RequestID)

		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
