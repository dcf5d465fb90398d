// Package orchestrator 按 校验 → 核对 → 保存 的顺序执行一次上传
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/normalizer"
	"github.com/LDanielOchoa/Programacion-Areas/internal/reconcile"
	"github.com/LDanielOchoa/Programacion-Areas/internal/validator"
)

// Stage 保存进度阶段
type Stage string

const (
	StageValidating   Stage = "validating"
	StageTransferring Stage = "transferring"
	StageSaving       Stage = "saving"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
)

// Backend 后端接口
type Backend interface {
	ValidateEmployees(ctx context.Context, employees []dto.EmployeeIdentity) (*dto.ValidateEmployeesResponse, error)
	CheckDates(ctx context.Context, dates []string, area dto.AreaType) (*dto.CheckDatesResponse, error)
	SaveSchedule(ctx context.Context, area dto.AreaType, records []dto.ScheduleRecord) (*dto.SaveScheduleResponse, error)
	SaveNovedades(ctx context.Context, area dto.AreaType, records []dto.NovedadRecord) (*dto.SaveNovedadesResponse, error)
}

// Config 编排器依赖
type Config struct {
	Backend    Backend
	Normalizer *normalizer.Normalizer
	// Debug 为 true 时在 Result.Detail 中附带诊断信息，仅用于非生产环境
	Debug   bool
	OnStage func(stage Stage, message string)
	Logger  *zap.Logger
}

// Options 单次保存的选项
type Options struct {
	// ConfirmExistingDates 用户已确认覆盖已有排班的日期
	ConfirmExistingDates bool
}

// Result 一次保存的结果；失败时 Stage 为 StageError
type Result struct {
	Stage       Stage
	RecordCount int
	InsertedIDs []int64
	Message     string
	Detail      string
}

// Orchestrator 保存编排器。同一实例同一时刻只允许一次保存
type Orchestrator struct {
	backend    Backend
	normalizer *normalizer.Normalizer
	debug      bool
	onStage    func(Stage, string)
	logger     *zap.Logger
	busy       atomic.Bool
}

// New 创建编排器
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	norm := cfg.Normalizer
	if norm == nil {
		norm = normalizer.New(logger)
	}
	return &Orchestrator{
		backend:    cfg.Backend,
		normalizer: norm,
		debug:      cfg.Debug,
		onStage:    cfg.OnStage,
		logger:     logger,
	}
}

// InProgress 是否有保存正在进行
func (o *Orchestrator) InProgress() bool { return o.busy.Load() }

func (o *Orchestrator) enter(stage Stage, message string) {
	if o.onStage != nil {
		o.onStage(stage, message)
	}
	o.logger.Debug("保存阶段", zap.String("stage", string(stage)), zap.String("message", message))
}

// fail 进入 error 阶段并返回带有可读信息的结果
func (o *Orchestrator) fail(err error) (*Result, error) {
	res := &Result{Stage: StageError, Message: err.Error()}
	if o.debug {
		res.Detail = debugDetail(err)
	}
	o.enter(StageError, res.Message)
	return res, err
}

func debugDetail(err error) string {
	var ae *reconcile.APIError
	if errors.As(err, &ae) {
		return fmt.Sprintf("status=%d class=%s details=%s cause=%v", ae.Status, ae.Class, ae.Details, ae.Err)
	}
	return fmt.Sprintf("%T: %v", err, err)
}

// ═══════════════════════════════════════════════════════════
// 排班保存
// ═══════════════════════════════════════════════════════════

// SaveSchedule 依次执行完整校验、员工与日期核对、保存；任一阶段失败即终止，保存请求最多发出一次
func (o *Orchestrator) SaveSchedule(ctx context.Context, doc *validator.ScheduleDocument, area dto.AreaType, opts Options) (*Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrSaveInProgress
	}
	defer o.busy.Store(false)

	// ── validating ──
	o.enter(StageValidating, "正在校验排班表")
	if errs := validator.ValidateRows(doc); len(errs) > 0 {
		return o.fail(&ValidationFailedError{Errors: errs})
	}
	records, err := o.normalizer.Schedule(doc, area)
	if err != nil {
		return o.fail(err)
	}
	if len(records) == 0 {
		return o.fail(validator.ErrNoRecords)
	}

	// ── transferring ──
	o.enter(StageTransferring, "正在核对员工与日期")
	if err := o.checkEmployees(ctx, scheduleEmployees(doc)); err != nil {
		return o.fail(err)
	}
	dates := uniqueDates(records)
	check, err := o.backend.CheckDates(ctx, dates, area)
	if err != nil {
		return o.fail(err)
	}
	if check.Exists && !opts.ConfirmExistingDates {
		return o.fail(&DateCollisionError{Area: area, Dates: check.ExistingDates})
	}
	if check.Exists {
		o.logger.Warn("用户确认覆盖已有排班日期",
			zap.String("area", string(area)),
			zap.Strings("dates", check.ExistingDates),
		)
	}

	// ── saving ──
	o.enter(StageSaving, fmt.Sprintf("正在保存 %d 条记录", len(records)))
	resp, err := o.backend.SaveSchedule(ctx, area, records)
	if err != nil {
		return o.fail(classifySaveError(err))
	}

	res := &Result{
		Stage:       StageComplete,
		RecordCount: resp.RecordCount,
		InsertedIDs: resp.InsertedIDs,
		Message:     resp.Message,
	}
	o.enter(StageComplete, res.Message)
	o.logger.Info("排班保存成功",
		zap.String("area", string(area)),
		zap.Int("records", res.RecordCount),
	)
	return res, nil
}

// ═══════════════════════════════════════════════════════════
// 异常保存
// ═══════════════════════════════════════════════════════════

// SaveNovedades 保存异常记录；不做当年校验与日期冲突检查
func (o *Orchestrator) SaveNovedades(ctx context.Context, doc *validator.NovedadesDocument, area dto.AreaType) (*Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrSaveInProgress
	}
	defer o.busy.Store(false)

	o.enter(StageValidating, "正在校验异常记录")
	records, err := o.normalizer.Novedades(doc, area)
	if err != nil {
		return o.fail(err)
	}
	if len(records) == 0 {
		return o.fail(validator.ErrNoRecords)
	}

	o.enter(StageTransferring, "正在核对员工")
	employees := make([]dto.EmployeeIdentity, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		employees = append(employees, dto.EmployeeIdentity{Cedula: row.Cedula, Nombre: row.Nombre})
	}
	if err := o.checkEmployees(ctx, employees); err != nil {
		return o.fail(err)
	}

	o.enter(StageSaving, fmt.Sprintf("正在保存 %d 条记录", len(records)))
	resp, err := o.backend.SaveNovedades(ctx, area, records)
	if err != nil {
		return o.fail(classifySaveError(err))
	}

	res := &Result{Stage: StageComplete, RecordCount: resp.RecordCount, Message: resp.Message}
	o.enter(StageComplete, res.Message)
	return res, nil
}

// ── 辅助 ──

func (o *Orchestrator) checkEmployees(ctx context.Context, employees []dto.EmployeeIdentity) error {
	resp, err := o.backend.ValidateEmployees(ctx, employees)
	if err != nil {
		return err
	}
	if !resp.IsValid && len(resp.InvalidEmployees) > 0 {
		return &EmployeeMismatchError{Employees: resp.InvalidEmployees}
	}
	return nil
}

func scheduleEmployees(doc *validator.ScheduleDocument) []dto.EmployeeIdentity {
	rows := doc.Employees()
	out := make([]dto.EmployeeIdentity, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.EmployeeIdentity{Cedula: r.ID, Nombre: r.Name})
	}
	return out
}

func uniqueDates(records []dto.ScheduleRecord) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, r := range records {
		if !seen[r.FechaProgramacion] {
			seen[r.FechaProgramacion] = true
			dates = append(dates, r.FechaProgramacion)
		}
	}
	sort.Strings(dates)
	return dates
}
