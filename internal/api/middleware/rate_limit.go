package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LDanielOchoa/Programacion-Areas/pkg/response"
)

// RateLimiter 窗口计数器（Redis 实现见 pkg/redis）
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 区域登录限流
// 同一 IP 对同一区域在 window 内最多尝试 limit 次；区域名不区分大小写。
// limiter 为 nil 或出错时降级放行（与令牌黑名单策略一致）
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		scope := strings.ToLower(c.Param("area"))
		if scope == "" {
			scope = c.Request.URL.Path
		}
		key := fmt.Sprintf("programacion:login_attempts:%s:%s", scope, c.ClientIP())

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "登录尝试过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
