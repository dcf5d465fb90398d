package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeySessionArea 区域会话中间件注入的区域标识
const ContextKeySessionArea = "session_area"

// SessionArea 从 Gin 上下文中取出已认证的区域。
// 未启用区域认证时返回 false，调用方不做区域校验。
func SessionArea(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeySessionArea)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// BearerToken 提取 Authorization: Bearer <token>
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
