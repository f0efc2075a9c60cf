// Package user 只负责把调用者身份放入请求上下文。
// 认证与会话由上游网关处理，这里信任它注入的请求头（或 cookie）。
package user

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderName 是上游会话层注入的用户ID请求头
	HeaderName = "X-User-ID"
	// CookieName 是没有请求头时的后备来源
	CookieName = "user-id"
	// UserIDKey 是存放在 gin 上下文中的键
	UserIDKey = "userID"
)

// LoadUserMiddleware 读取用户ID并放入 gin 上下文。读不到时放入空字符串，
// 下游把空ID视为匿名调用者。
func LoadUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderName))
		if userID == "" {
			userID, _ = c.Cookie(CookieName)
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// FromContext 返回当前请求的用户ID
func FromContext(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
