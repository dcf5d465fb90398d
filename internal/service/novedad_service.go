package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dateparse"
	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
)

// NovedadService 排班异常业务接口
type NovedadService interface {
	SaveNovedades(ctx context.Context, records []dto.NovedadRecord) (*dto.SaveNovedadesResponse, error)
}

type novedadService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewNovedadService 创建 NovedadService 实例
func NewNovedadService(repo *repository.Repository, logger *zap.Logger) NovedadService {
	return &novedadService{repo: repo, logger: logger, now: time.Now}
}

func (s *novedadService) SaveNovedades(ctx context.Context, records []dto.NovedadRecord) (*dto.SaveNovedadesResponse, error) {
	if len(records) == 0 {
		return nil, ErrNoRecordsGiven
	}
	now := s.now()

	rows := make([]model.Novedad, 0, len(records))
	for i, rec := range records {
		row, reason := toNovedadModel(rec, now)
		if reason != "" {
			s.logger.Warn("异常记录校验失败", zap.Int("index", i), zap.String("reason", reason))
			return nil, &RecordValidationError{Index: i, Record: rec, Reason: reason}
		}
		rows = append(rows, row)
	}

	n, err := s.repo.Novedad.BatchCreate(ctx, rows)
	if err != nil {
		var dup *repository.DuplicateEntryError
		if errors.As(err, &dup) {
			return nil, &DuplicateRecordError{Entry: dup.Entry, Err: err}
		}
		s.logger.Error("保存异常记录失败", zap.Int("records", len(rows)), zap.Error(err))
		return nil, fmt.Errorf("保存异常记录失败: %w", err)
	}

	s.logger.Info("异常记录已保存", zap.Int64("records", n))
	return &dto.SaveNovedadesResponse{
		Success:     true,
		Message:     "异常记录保存成功",
		RecordCount: int(n),
	}, nil
}

func toNovedadModel(rec dto.NovedadRecord, now time.Time) (model.Novedad, string) {
	cedula, ok := parseCedula(rec.Cedula, 1)
	if !ok {
		return model.Novedad{}, "CEDULA 无效: " + rec.Cedula
	}

	fecha, ok := dateparse.Parse(rec.FechaProgramacion, now.Year())
	if !ok {
		return model.Novedad{}, "排班日期无效: " + rec.FechaProgramacion
	}

	var extra *time.Time
	if rec.FechaHoraExtra != nil && strings.TrimSpace(*rec.FechaHoraExtra) != "" {
		t, ok := dateparse.Parse(*rec.FechaHoraExtra, now.Year())
		if !ok {
			return model.Novedad{}, "加班日期无效: " + *rec.FechaHoraExtra
		}
		extra = &t
	}

	return model.Novedad{
		FechaProgramacion: fecha,
		Cedula:            cedula,
		TipoNovedad:       strings.TrimSpace(rec.TipoNovedad),
		FechaHoraExtra:    extra,
		HoraInicioFin:     nonEmpty(rec.HoraInicioFin),
		Motivo:            nonEmpty(rec.Motivo),
		CedulaAutoriza:    nonEmpty(rec.CedulaAutoriza),
		Area:              rec.Area,
		Quincena:          rec.Quincena,
		TiempoDescontar:   rec.TiempoDescontar,
		FechaConsulta:     now,
	}, ""
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
