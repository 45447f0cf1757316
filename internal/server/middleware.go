package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jimdaga/wellness-checkin/internal/auth"
)

// RequestIDHeader carries the id of each request in the response
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request tagged with a fresh request id
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		}
		if user := c.GetString(auth.KeyUserID); user != "" {
			attrs = append(attrs, "user_id", user)
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", attrs...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}
