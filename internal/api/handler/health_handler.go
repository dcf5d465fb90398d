package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 健康检查依赖（数据库、Redis）
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	pingers []Pinger
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(pingers ...Pinger) *HealthHandler {
	return &HealthHandler{pingers: pingers}
}

// Health 存活检查，同时报告各依赖状态
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(gin.H, len(h.pingers))
	for _, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			deps[p.Name()] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[p.Name()] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "dependencies": deps})
}
