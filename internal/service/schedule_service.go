package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
)

// ── 排班业务错误 ──

var (
	ErrNoDatesToCheck = errors.New("没有提供需要检查的日期")
	ErrAreaRequired   = errors.New("没有提供区域")
	ErrNoRecordsGiven = errors.New("没有需要保存的记录")
)

// minCedulaDigits 身份证号最少位数
const minCedulaDigits = 6

var isoDatePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// YearMismatchError 存在不属于当年的记录
type YearMismatchError struct {
	Year  int
	Dates []string
}

func (e *YearMismatchError) Error() string {
	return fmt.Sprintf("日期不在当年（%d）内", e.Year)
}

// RecordValidationError 第 Index 条记录（0 基）未通过校验
type RecordValidationError struct {
	Index  int
	Record any
	Reason string
}

func (e *RecordValidationError) Error() string {
	return fmt.Sprintf("第 %d 条记录校验失败: %s", e.Index+1, e.Reason)
}

// DuplicateRecordError 记录违反唯一键
type DuplicateRecordError struct {
	Entry string
	Err   error
}

func (e *DuplicateRecordError) Error() string {
	if e.Entry == "" {
		return "记录重复"
	}
	return "冲突字段: " + e.Entry
}

func (e *DuplicateRecordError) Unwrap() error { return e.Err }

// ScheduleService 排班业务接口
type ScheduleService interface {
	// CheckDates 区域在给定日期中已有排班的日期
	CheckDates(ctx context.Context, req *dto.CheckDatesRequest) (*dto.CheckDatesResponse, error)
	// SaveSchedule 校验并在单个事务中保存排班记录
	SaveSchedule(ctx context.Context, records []dto.ScheduleRecord) (*dto.SaveScheduleResponse, error)
}

type scheduleService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// CheckDates
// ═══════════════════════════════════════════════════════════

func (s *scheduleService) CheckDates(ctx context.Context, req *dto.CheckDatesRequest) (*dto.CheckDatesResponse, error) {
	if len(req.Dates) == 0 {
		return nil, ErrNoDatesToCheck
	}
	area := strings.TrimSpace(req.Area)
	if area == "" {
		return nil, ErrAreaRequired
	}

	dates := make([]string, 0, len(req.Dates))
	for _, d := range req.Dates {
		if i := strings.IndexByte(d, 'T'); i >= 0 {
			d = d[:i]
		}
		if d = strings.TrimSpace(d); d != "" {
			dates = append(dates, d)
		}
	}

	existing, err := s.repo.ScheduleRecord.ExistingDates(ctx, area, dates)
	if err != nil {
		if s.cfg.App.IsDevelopment() {
			// 开发环境数据库不可用时跳过日期检查
			s.logger.Warn("日期检查失败，开发环境按无冲突处理", zap.Error(err))
			return &dto.CheckDatesResponse{Exists: false, ExistingDates: []string{}}, nil
		}
		s.logger.Error("查询已有排班日期失败", zap.String("area", area), zap.Error(err))
		return nil, err
	}

	return &dto.CheckDatesResponse{
		Exists:        len(existing) > 0,
		ExistingDates: existing,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// SaveSchedule
// ═══════════════════════════════════════════════════════════

func (s *scheduleService) SaveSchedule(ctx context.Context, records []dto.ScheduleRecord) (*dto.SaveScheduleResponse, error) {
	if len(records) == 0 {
		return nil, ErrNoRecordsGiven
	}
	now := s.now()

	// 1. 整批年份检查
	if err := checkYear(records, now.Year()); err != nil {
		return nil, err
	}

	// 2. 逐条校验，遇到第一条错误即返回
	rows := make([]model.ScheduleRecord, 0, len(records))
	for i, rec := range records {
		row, reason := toScheduleModel(rec, now)
		if reason != "" {
			s.logger.Warn("排班记录校验失败", zap.Int("index", i), zap.String("reason", reason))
			return nil, &RecordValidationError{Index: i, Record: rec, Reason: reason}
		}
		rows = append(rows, row)
	}

	// 3. 单事务批量写入
	ids, err := s.repo.ScheduleRecord.BatchCreate(ctx, rows)
	if err != nil {
		var dup *repository.DuplicateEntryError
		if errors.As(err, &dup) {
			return nil, &DuplicateRecordError{Entry: dup.Entry, Err: err}
		}
		s.logger.Error("保存排班记录失败", zap.Int("records", len(rows)), zap.Error(err))
		return nil, fmt.Errorf("保存排班记录失败: %w", err)
	}

	s.logger.Info("排班记录已保存",
		zap.String("area", rows[0].Area),
		zap.Int("records", len(ids)),
	)

	return &dto.SaveScheduleResponse{
		Message:     "数据保存成功",
		RecordCount: len(ids),
		InsertedIDs: ids,
	}, nil
}

func checkYear(records []dto.ScheduleRecord, year int) error {
	var invalid []string
	prefix := fmt.Sprintf("%04d-", year)
	for _, rec := range records {
		d := strings.TrimSpace(rec.FechaProgramacion)
		if !isoDatePrefix.MatchString(d) || !strings.HasPrefix(d, prefix) {
			invalid = append(invalid, rec.FechaProgramacion)
		}
	}
	if len(invalid) > 0 {
		return &YearMismatchError{Year: year, Dates: invalid}
	}
	return nil
}

// parseCedula 身份证号必须为数字且至少 minDigits 位
func parseCedula(raw string, minDigits int) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, len(strconv.FormatInt(n, 10)) >= minDigits
}

// toScheduleModel 转换为入库模型；返回非空 reason 表示校验失败
func toScheduleModel(rec dto.ScheduleRecord, now time.Time) (model.ScheduleRecord, string) {
	cedula, ok := parseCedula(rec.Cedula, minCedulaDigits)
	if !ok {
		return model.ScheduleRecord{}, "CEDULA 无效: " + rec.Cedula
	}

	m := isoDatePrefix.FindStringSubmatch(strings.TrimSpace(rec.FechaProgramacion))
	if m == nil {
		return model.ScheduleRecord{}, "日期格式无效: " + rec.FechaProgramacion
	}
	fecha, err := time.ParseInLocation(model.DateLayout, m[0], now.Location())
	if err != nil {
		return model.ScheduleRecord{}, "日期无效: " + m[0]
	}

	horario := strings.TrimSpace(rec.Horario)
	if horario == "" {
		return model.ScheduleRecord{}, "班次为空"
	}

	var clasificacion *string
	if rec.Clasificacion != nil && strings.TrimSpace(*rec.Clasificacion) != "" {
		c := strings.TrimSpace(*rec.Clasificacion)
		clasificacion = &c
	}

	return model.ScheduleRecord{
		Cedula:            cedula,
		FechaProgramacion: fecha,
		Horario:           horario,
		Area:              rec.Area,
		TiempoDescontar:   rec.TiempoDescontar,
		Quincena:          rec.Quincena,
		Clasificacion:     clasificacion,
		FechaConsulta:     now,
	}, ""
}
