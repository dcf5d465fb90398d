package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/service"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchedule 导出区域排班
// GET /api/export/schedule?area=Lavado&from=2026-03-01&to=2026-03-15
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	var req dto.ExportScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "area、from、to 不能为空")
		return
	}
	if sessionArea, ok := SessionArea(c); ok {
		if a, known := dto.ParseArea(req.Area); !known || !strings.EqualFold(string(a), sessionArea) {
			response.Forbidden(c, 12004, "会话不属于该区域")
			return
		}
	}

	buf, filename, err := h.exportSvc.ExportSchedule(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownArea):
		response.NotFound(c, 12001, "区域不存在")
	case errors.Is(err, service.ErrExportInvalidRange):
		response.BadRequest(c, 16101, "日期范围无效，格式为 YYYY-MM-DD")
	case errors.Is(err, service.ErrExportRangeTooLong):
		response.BadRequest(c, 16102, err.Error())
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 16103, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
