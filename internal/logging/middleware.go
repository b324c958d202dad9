package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoggingMiddleware creates a Gin middleware for structured request logging.
func LoggingMiddleware(logger *StructuredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
			c.Header("X-Trace-ID", traceID)
		}
		ctx := WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		duration := time.Since(start)
		logger.LogHTTP(
			ctx,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			duration,
			slog.String("remote_addr", c.ClientIP()),
			slog.Int64("response_size", int64(c.Writer.Size())),
		)

		for _, err := range c.Errors {
			logger.Error(ctx, "request error", err.Err)
		}
	}
}

// RecoveryMiddleware creates a Gin middleware for panic recovery with logging.
func RecoveryMiddleware(logger *StructuredLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		ctx := c.Request.Context()
		logger.Error(ctx, "panic recovered", nil,
			slog.Any("panic", recovered),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":    "internal server error",
			"trace_id": ctx.Value(TraceIDKey),
		})
	})
}
