package api

import (
	"log/slog"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/user"
	"github.com/gin-gonic/gin"
)

// RequestLogger 用 slog 记录每个请求，release 模式下替代 gin.Logger()
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"user", user.FromContext(c),
		)
	}
}
