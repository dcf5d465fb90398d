package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/service"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/response"
)

// AreaSessionHandler 区域会话 HTTP 处理器
type AreaSessionHandler struct {
	authSvc service.AreaAuthService
}

// NewAreaSessionHandler 创建 AreaSessionHandler
func NewAreaSessionHandler(authSvc service.AreaAuthService) *AreaSessionHandler {
	return &AreaSessionHandler{authSvc: authSvc}
}

// ListAreas 区域列表
// GET /api/areas
func (h *AreaSessionHandler) ListAreas(c *gin.Context) {
	response.OK(c, dto.Areas())
}

// Login 使用区域密码建立会话
// POST /api/areas/:area/session
func (h *AreaSessionHandler) Login(c *gin.Context) {
	area, ok := dto.ParseArea(c.Param("area"))
	if !ok {
		response.NotFound(c, 12001, "区域不存在")
		return
	}

	var req dto.AreaLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), area, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, result)
}

// Check 检查当前令牌是否属于该区域
// GET /api/areas/:area/session
func (h *AreaSessionHandler) Check(c *gin.Context) {
	area, ok := dto.ParseArea(c.Param("area"))
	if !ok {
		response.NotFound(c, 12001, "区域不存在")
		return
	}
	token, ok := BearerToken(c)
	if !ok {
		response.Unauthorized(c, 10002, "缺少认证头")
		return
	}

	claims, err := h.authSvc.Verify(c.Request.Context(), area, token)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, gin.H{
		"area":        area.Info(),
		"remember_me": claims.RememberMe,
		"expires_at":  claims.ExpiresAt.Time,
	})
}

// Logout 注销区域会话
// DELETE /api/areas/:area/session
func (h *AreaSessionHandler) Logout(c *gin.Context) {
	area, ok := dto.ParseArea(c.Param("area"))
	if !ok {
		response.NotFound(c, 12001, "区域不存在")
		return
	}
	token, ok := BearerToken(c)
	if !ok {
		response.Unauthorized(c, 10002, "缺少认证头")
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), area, token); err != nil {
		h.handleSessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AreaSessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownArea):
		response.NotFound(c, 12001, "区域不存在")
	case errors.Is(err, service.ErrAreaNotProtected):
		response.BadRequest(c, 12002, "该区域未设置密码")
	case errors.Is(err, service.ErrInvalidAreaPassword):
		response.Unauthorized(c, 12003, "区域密码错误")
	case errors.Is(err, service.ErrSessionInvalid), errors.Is(err, service.ErrSessionRevoked):
		response.Unauthorized(c, 10002, "会话无效或已过期")
	case errors.Is(err, service.ErrSessionAreaMismatch):
		response.Forbidden(c, 12004, "会话不属于该区域")
	default:
		response.InternalError(c)
	}
}
