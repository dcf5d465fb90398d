package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LDanielOchoa/Programacion-Areas/pkg/jwt"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/response"
)

// sessionAreaKey 与 handler.ContextKeySessionArea 一致
const sessionAreaKey = "session_area"

// SessionVerifier 校验区域会话令牌
type SessionVerifier interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

// AreaAuth 区域会话认证中间件
// 从 Authorization: Bearer <token> 中提取令牌，校验后把区域注入上下文，
// 由 handler 比对请求数据的区域
func AreaAuth(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := verifier.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, 10002, "会话无效或已过期")
			c.Abort()
			return
		}

		c.Set(sessionAreaKey, claims.Area)
		c.Next()
	}
}
