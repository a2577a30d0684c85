package httpserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mailbrief/pkg/metrics"
	"mailbrief/pkg/trace"
)

// TraceMiddleware 为每个请求生成或透传 trace_id
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}

		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName(), traceID)

		c.Next()
	}
}

// MetricsMiddleware 记录 HTTP 请求延迟
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(
			c.Request.Method, path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
