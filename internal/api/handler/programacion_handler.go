package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/service"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/response"
)

// debugInfo 开发环境 500 响应附带的诊断信息；生产环境为 nil
type debugInfo struct {
	database string
	host     string
}

func newDebugInfo(cfg *config.Config) *debugInfo {
	if cfg == nil || !cfg.App.IsDevelopment() {
		return nil
	}
	return &debugInfo{
		database: cfg.Database.Name,
		host:     fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port),
	}
}

// ProgramacionHandler 排班上传接口
// 响应体沿用前端约定的原始结构（不经 response.Response 包装）
type ProgramacionHandler struct {
	employeeSvc service.EmployeeService
	scheduleSvc service.ScheduleService
	novedadSvc  service.NovedadService
	debug       *debugInfo
}

// NewProgramacionHandler 创建 ProgramacionHandler
func NewProgramacionHandler(
	employeeSvc service.EmployeeService,
	scheduleSvc service.ScheduleService,
	novedadSvc service.NovedadService,
	debug *debugInfo,
) *ProgramacionHandler {
	return &ProgramacionHandler{
		employeeSvc: employeeSvc,
		scheduleSvc: scheduleSvc,
		novedadSvc:  novedadSvc,
		debug:       debug,
	}
}

// ValidateEmployees 校验员工是否存在于人员登记库
// POST /api/validate-employees
func (h *ProgramacionHandler) ValidateEmployees(c *gin.Context) {
	var req dto.ValidateEmployeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Raw(c, http.StatusBadRequest, dto.ErrorResponse{Error: service.ErrEmployeeListInvalid.Error()})
		return
	}

	result, err := h.employeeSvc.ValidateEmployees(c.Request.Context(), req.Employees)
	if err != nil {
		h.handleProgramacionError(c, err, "员工校验失败")
		return
	}
	response.Raw(c, http.StatusOK, result)
}

// CheckDates 检查区域在给定日期是否已有排班
// POST /api/check-dates
func (h *ProgramacionHandler) CheckDates(c *gin.Context) {
	var req dto.CheckDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Raw(c, http.StatusBadRequest, dto.ErrorResponse{Error: "请求参数格式无效"})
		return
	}

	result, err := h.scheduleSvc.CheckDates(c.Request.Context(), &req)
	if err != nil {
		h.handleProgramacionError(c, err, "检查日期失败")
		return
	}
	response.Raw(c, http.StatusOK, result)
}

// SaveSchedule 保存排班记录
// POST /api/save-schedule
func (h *ProgramacionHandler) SaveSchedule(c *gin.Context) {
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Raw(c, http.StatusBadRequest, dto.ErrorResponse{Error: "请求参数格式无效"})
		return
	}

	areas := make([]string, 0, len(req.Records))
	for _, r := range req.Records {
		areas = append(areas, r.Area)
	}
	if !h.checkSessionArea(c, areas) {
		return
	}

	result, err := h.scheduleSvc.SaveSchedule(c.Request.Context(), req.Records)
	if err != nil {
		h.handleProgramacionError(c, err, "保存数据失败")
		return
	}
	response.Raw(c, http.StatusOK, result)
}

// SaveNovedades 保存排班异常
// POST /api/save-novedades
func (h *ProgramacionHandler) SaveNovedades(c *gin.Context) {
	var req dto.SaveNovedadesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Raw(c, http.StatusBadRequest, dto.ErrorResponse{Error: "请求参数格式无效"})
		return
	}

	areas := make([]string, 0, len(req.Records))
	for _, r := range req.Records {
		areas = append(areas, r.Area)
	}
	if !h.checkSessionArea(c, areas) {
		return
	}

	result, err := h.novedadSvc.SaveNovedades(c.Request.Context(), req.Records)
	if err != nil {
		h.handleProgramacionError(c, err, "保存异常记录失败")
		return
	}
	response.Raw(c, http.StatusOK, result)
}

// checkSessionArea 启用区域认证时，所有记录必须属于会话区域
func (h *ProgramacionHandler) checkSessionArea(c *gin.Context, areas []string) bool {
	sessionArea, ok := SessionArea(c)
	if !ok {
		return true
	}
	for _, a := range areas {
		if !strings.EqualFold(strings.TrimSpace(a), sessionArea) {
			response.Raw(c, http.StatusForbidden, dto.ErrorResponse{
				Error:   service.ErrSessionAreaMismatch.Error(),
				Details: fmt.Sprintf("会话区域 %s，记录区域 %s", sessionArea, a),
			})
			return false
		}
	}
	return true
}

func (h *ProgramacionHandler) handleProgramacionError(c *gin.Context, err error, fallback string) {
	var (
		yearErr   *service.YearMismatchError
		recordErr *service.RecordValidationError
		dupErr    *service.DuplicateRecordError
	)

	switch {
	case errors.Is(err, service.ErrEmployeeListInvalid),
		errors.Is(err, service.ErrNoValidCedulas),
		errors.Is(err, service.ErrTooManyEmployees),
		errors.Is(err, service.ErrNoDatesToCheck),
		errors.Is(err, service.ErrAreaRequired),
		errors.Is(err, service.ErrNoRecordsGiven):
		response.Raw(c, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})

	case errors.As(err, &yearErr):
		response.Raw(c, http.StatusBadRequest, dto.ErrorResponse{
			Error:          yearErr.Error(),
			InvalidRecords: yearErr.Dates,
		})

	case errors.As(err, &recordErr):
		idx := recordErr.Index
		response.Raw(c, http.StatusBadRequest, dto.ErrorResponse{
			Error:        "数据校验失败",
			Details:      recordErr.Reason,
			FailedRecord: recordErr.Record,
			RecordIndex:  &idx,
		})

	case errors.As(err, &dupErr):
		response.Raw(c, http.StatusConflict, dto.ErrorResponse{
			Error:   "记录重复",
			Details: "Conflicto en: " + dupErr.Entry,
			Code:    "ER_DUP_ENTRY",
		})

	default:
		_ = c.Error(err)
		body := dto.ErrorResponse{Error: fallback}
		if h.debug != nil {
			body.Details = err.Error()
			body.Debug = &dto.ErrorDebugInfo{
				Database: h.debug.database,
				Host:     h.debug.host,
			}
			if cause := errors.Unwrap(err); cause != nil {
				body.Debug.Cause = cause.Error()
			}
		}
		response.Raw(c, http.StatusInternalServerError, body)
	}
}
