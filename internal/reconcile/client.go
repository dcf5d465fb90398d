// Package reconcile 调用后端的员工校验、日期冲突检查与保存接口
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/session"
)

// 默认超时与批量上限
const (
	DefaultEmployeesTimeout = 30 * time.Second
	DefaultDatesTimeout     = 15 * time.Second
	DefaultSaveTimeout      = 30 * time.Second
	MaxEmployeesPerRequest  = 1000
	maxErrorBody            = 64 << 10
)

// Options 客户端配置
type Options struct {
	BaseURL          string
	EmployeesTimeout time.Duration
	DatesTimeout     time.Duration
	SaveTimeout      time.Duration
	Sessions         session.Store
	HTTPClient       *http.Client
	Logger           *zap.Logger
}

// Client 后端接口客户端。员工校验与日期检查失败时放行，保存失败时报错
type Client struct {
	baseURL  string
	opts     Options
	hc       *http.Client
	sessions session.Store
	logger   *zap.Logger
}

// New 创建客户端
func New(opts Options) *Client {
	if opts.EmployeesTimeout <= 0 {
		opts.EmployeesTimeout = DefaultEmployeesTimeout
	}
	if opts.DatesTimeout <= 0 {
		opts.DatesTimeout = DefaultDatesTimeout
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		opts:     opts,
		hc:       hc,
		sessions: opts.Sessions,
		logger:   logger,
	}
}

// ═══════════════════════════════════════════════════════════
// 只读检查（失败放行）
// ═══════════════════════════════════════════════════════════

var nonDigits = regexp.MustCompile(`\D`)

// UniqueEmployees 按去除非数字字符后的身份证号去重，保留首次出现
func UniqueEmployees(in []dto.EmployeeIdentity) []dto.EmployeeIdentity {
	seen := make(map[string]bool, len(in))
	out := make([]dto.EmployeeIdentity, 0, len(in))
	for _, e := range in {
		key := nonDigits.ReplaceAllString(e.Cedula, "")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// ValidateEmployees 校验员工是否存在于人员登记库；超过上限时分批请求。
// 后端不可达或返回 5xx 时视为全部有效
func (c *Client) ValidateEmployees(ctx context.Context, employees []dto.EmployeeIdentity) (*dto.ValidateEmployeesResponse, error) {
	employees = UniqueEmployees(employees)
	result := &dto.ValidateEmployeesResponse{
		IsValid:          true,
		InvalidEmployees: []dto.EmployeeIdentity{},
	}
	if len(employees) == 0 {
		return result, nil
	}

	for start := 0; start < len(employees); start += MaxEmployeesPerRequest {
		end := start + MaxEmployeesPerRequest
		if end > len(employees) {
			end = len(employees)
		}
		batch := employees[start:end]

		var resp dto.ValidateEmployeesResponse
		err := c.post(ctx, c.opts.EmployeesTimeout, "/api/validate-employees", "",
			dto.ValidateEmployeesRequest{Employees: batch}, &resp)
		if err != nil {
			if failOpen(err) {
				c.logger.Warn("员工校验失败，按全部有效处理", zap.Int("employees", len(batch)), zap.Error(err))
				return &dto.ValidateEmployeesResponse{
					IsValid:          true,
					InvalidEmployees: []dto.EmployeeIdentity{},
				}, nil
			}
			return nil, err
		}

		result.InvalidEmployees = append(result.InvalidEmployees, resp.InvalidEmployees...)
		result.Meta.TotalChecked += resp.Meta.TotalChecked
		result.Meta.ValidCount += resp.Meta.ValidCount
	}

	result.Meta.InvalidCount = len(result.InvalidEmployees)
	result.IsValid = len(result.InvalidEmployees) == 0
	return result, nil
}

// CheckDates 检查区域在这些日期是否已有排班；后端不可达或返回 5xx 时视为无冲突
func (c *Client) CheckDates(ctx context.Context, dates []string, area dto.AreaType) (*dto.CheckDatesResponse, error) {
	noConflict := &dto.CheckDatesResponse{Exists: false, ExistingDates: []string{}}
	if len(dates) == 0 {
		return noConflict, nil
	}

	var resp dto.CheckDatesResponse
	err := c.post(ctx, c.opts.DatesTimeout, "/api/check-dates", "",
		dto.CheckDatesRequest{Dates: dates, Area: string(area)}, &resp)
	if err != nil {
		if failOpen(err) {
			c.logger.Warn("日期检查失败，按无冲突处理", zap.String("area", string(area)), zap.Error(err))
			return noConflict, nil
		}
		return nil, err
	}
	if resp.ExistingDates == nil {
		resp.ExistingDates = []string{}
	}
	resp.Exists = resp.Exists || len(resp.ExistingDates) > 0
	return &resp, nil
}

func failOpen(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return true
	}
	return ae.Class == ClassTransport || ae.Class == ClassServer
}

// ═══════════════════════════════════════════════════════════
// 保存（失败报错，不重试）
// ═══════════════════════════════════════════════════════════

// SaveSchedule 提交排班记录
func (c *Client) SaveSchedule(ctx context.Context, area dto.AreaType, records []dto.ScheduleRecord) (*dto.SaveScheduleResponse, error) {
	var resp dto.SaveScheduleResponse
	if err := c.post(ctx, c.opts.SaveTimeout, "/api/save-schedule", area,
		dto.SaveScheduleRequest{Records: records}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveNovedades 提交异常记录
func (c *Client) SaveNovedades(ctx context.Context, area dto.AreaType, records []dto.NovedadRecord) (*dto.SaveNovedadesResponse, error) {
	var resp dto.SaveNovedadesResponse
	if err := c.post(ctx, c.opts.SaveTimeout, "/api/save-novedades", area,
		dto.SaveNovedadesRequest{Records: records}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ── 区域会话 ──

// Login 使用区域密码换取令牌，成功后写入会话存储
func (c *Client) Login(ctx context.Context, area dto.AreaType, password string, rememberMe bool) (*dto.AreaSessionResponse, error) {
	// 会话接口使用统一响应结构 {code, message, data}
	var envelope struct {
		Data dto.AreaSessionResponse `json:"data"`
	}
	path := "/api/areas/" + string(area) + "/session"
	if err := c.post(ctx, c.opts.DatesTimeout, path, "",
		dto.AreaLoginRequest{Password: password, RememberMe: rememberMe}, &envelope); err != nil {
		return nil, err
	}
	resp := envelope.Data
	if c.sessions != nil && resp.AccessToken != "" {
		if err := c.sessions.Set(string(area), resp.AccessToken); err != nil {
			return nil, fmt.Errorf("保存令牌失败: %w", err)
		}
	}
	return &resp, nil
}

// Logout 注销区域会话并清除本地令牌
func (c *Client) Logout(ctx context.Context, area dto.AreaType) error {
	err := c.do(ctx, c.opts.DatesTimeout, http.MethodDelete, "/api/areas/"+string(area)+"/session", area, nil, nil)
	if c.sessions != nil {
		if cerr := c.sessions.Clear(string(area)); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// ═══════════════════════════════════════════════════════════
// HTTP
// ═══════════════════════════════════════════════════════════

func (c *Client) post(ctx context.Context, timeout time.Duration, path string, area dto.AreaType, body, out any) error {
	return c.do(ctx, timeout, http.MethodPost, path, area, body, out)
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, area dto.AreaType, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("编码请求失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Class: ClassTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if area != "" && c.sessions != nil {
		if token, ok, err := c.sessions.Get(string(area)); err == nil && ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return &APIError{Class: ClassTransport, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("后端请求完成",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Class: ClassTransport, Err: fmt.Errorf("解析响应失败: %w", err)}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Class: classify(resp.StatusCode)}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body dto.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		apiErr.InvalidRecords = body.InvalidRecords
		apiErr.RecordIndex = body.RecordIndex
		return apiErr
	}

	// 统一响应格式 {code, message}
	var envelope struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}
