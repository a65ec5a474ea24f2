package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID sets or propagates an X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// AccessLog writes a structured access log line after each request.
func AccessLog(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("http_access",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"req_id", c.GetString("request_id"),
		)
	}
}

// RecoveryProblem converts handler panics into application/problem+json.
func RecoveryProblem(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic in handler", "error", rec, "path", c.FullPath())
				c.Header("Content-Type", "application/problem+json")
				c.JSON(http.StatusInternalServerError, map[string]any{
					"type":   "about:blank",
					"title":  "Internal Server Error",
					"status": http.StatusInternalServerError,
					"detail": "unexpected server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
