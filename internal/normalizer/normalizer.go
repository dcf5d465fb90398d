// Package normalizer 把校验通过的排班表转换为入库记录
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dateparse"
	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/grammar"
	"github.com/LDanielOchoa/Programacion-Areas/internal/holiday"
	"github.com/LDanielOchoa/Programacion-Areas/internal/validator"
	"github.com/LDanielOchoa/Programacion-Areas/internal/workbook"
)

// HolidayClassification 节假日且行内没有岗位时使用的分类
const HolidayClassification = "Festivo"

// consultaLayout 异常记录的查询时间格式
const consultaLayout = "2006-01-02 15:04:05"

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// YearMismatchError 存在不属于当年的排班日期，整批拒绝
type YearMismatchError struct {
	Year  int
	Dates []string
}

func (e *YearMismatchError) Error() string {
	return fmt.Sprintf("hay fechas fuera del año en curso (%d): %s", e.Year, strings.Join(e.Dates, ", "))
}

// UnresolvedDateHeaderError 有排班的日期表头无法识别为日期，整批拒绝
type UnresolvedDateHeaderError struct {
	Headers []string
}

func (e *UnresolvedDateHeaderError) Error() string {
	return fmt.Sprintf("no se reconoce la fecha de los encabezados %s; use el formato DD/MM/AAAA", strings.Join(e.Headers, ", "))
}

// PayPeriod 半月结算周期标签：1–15 日为 Q1，其余为 Q2，如 Q1_Enero_2026
func PayPeriod(t time.Time) string {
	q := "Q1"
	if t.Day() > 15 {
		q = "Q2"
	}
	return fmt.Sprintf("%s_%s_%d", q, monthNames[t.Month()-1], t.Year())
}

// Normalizer 记录规范化器
type Normalizer struct {
	Now      func() time.Time
	Holidays holiday.Calendar
	logger   *zap.Logger
}

// New 创建规范化器，使用当前时间与哥伦比亚节假日
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{Now: time.Now, Holidays: holiday.Colombia{}, logger: logger}
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n *Normalizer) log() *zap.Logger {
	if n.logger == nil {
		return zap.NewNop()
	}
	return n.logger
}

type resolvedDate struct {
	iso string
	ok  bool
}

// Schedule 生成排班记录；有排班的日期表头无法识别时返回 *UnresolvedDateHeaderError，
// 任意日期不在当年时返回 *YearMismatchError，两种情况都不产生任何记录
func (n *Normalizer) Schedule(doc *validator.ScheduleDocument, area dto.AreaType) ([]dto.ScheduleRecord, error) {
	now := n.now()
	year := now.Year()

	dates := make(map[int]resolvedDate, len(doc.DateColumns))
	for _, dc := range doc.DateColumns {
		iso, ok := dateparse.ISO(dc.Header, year)
		if !ok {
			n.log().Debug("日期表头无法解析，保留原文", zap.String("header", dc.Header))
		}
		dates[dc.Col] = resolvedDate{iso: iso, ok: ok}
	}

	employees := doc.Employees()

	var unresolved, offending []string
	seen := make(map[string]bool)
	for _, row := range employees {
		for _, sc := range row.Shifts {
			if sc.Value == "" {
				continue
			}
			d := dates[sc.Col]
			if d.ok && strings.HasPrefix(d.iso, fmt.Sprintf("%04d-", year)) {
				continue
			}
			if seen[d.iso] {
				continue
			}
			seen[d.iso] = true
			if d.ok {
				offending = append(offending, d.iso)
			} else {
				unresolved = append(unresolved, d.iso)
			}
		}
	}
	if len(unresolved) > 0 {
		return nil, &UnresolvedDateHeaderError{Headers: unresolved}
	}
	if len(offending) > 0 {
		return nil, &YearMismatchError{Year: year, Dates: offending}
	}

	var holidays holiday.Set
	if n.Holidays != nil {
		holidays = holiday.SetFor(n.Holidays, year)
	}
	quincena := PayPeriod(now)
	consulta := now.Format(time.RFC3339)

	var records []dto.ScheduleRecord
	for _, row := range employees {
		for _, sc := range row.Shifts {
			if sc.Value == "" {
				continue
			}
			label, deduction := ShiftLabel(sc.Value, doc.LunchRules)
			date := dates[sc.Col].iso

			rec := dto.ScheduleRecord{
				Cedula:            row.ID,
				FechaProgramacion: date,
				Horario:           label,
				Area:              string(area),
				TiempoDescontar:   deduction,
				Quincena:          quincena,
				FechaConsulta:     consulta,
			}
			if holidays.Contains(date) {
				c := row.Position
				if c == "" {
					c = HolidayClassification
				}
				rec.Clasificacion = &c
			}
			records = append(records, rec)
		}
	}

	n.log().Info("排班记录规范化完成",
		zap.String("area", string(area)),
		zap.Int("employees", len(employees)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// ShiftLabel 计算入库的班次文本与扣除时长：
// 特殊值扣除为 0；[X.X] 标注优先于午餐规则；时间部分补齐前导零
func ShiftLabel(value string, lunch workbook.LunchRules) (string, float64) {
	v := strings.TrimSpace(value)
	if grammar.IsSpecial(v) {
		return v, 0
	}

	label, deduction, annotated := grammar.SplitDeduction(v)
	if !annotated {
		if d, ok := lunch.Lookup(label); ok {
			deduction = d
		}
	}
	return grammar.PadHours(label), deduction
}

// Novedades 生成异常记录，日期统一为 YYYY-MM-DD
func (n *Normalizer) Novedades(doc *validator.NovedadesDocument, area dto.AreaType) ([]dto.NovedadRecord, error) {
	now := n.now()
	year := now.Year()
	quincena := PayPeriod(now)
	consulta := now.Format(consultaLayout)

	records := make([]dto.NovedadRecord, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		fecha, ok := dateparse.ISO(row.FechaProgramacion, year)
		if !ok {
			return nil, &validator.InvalidDateError{Row: row.RowIndex + 1, Value: row.FechaProgramacion}
		}

		rec := dto.NovedadRecord{
			FechaProgramacion: fecha,
			Cedula:            row.Cedula,
			TipoNovedad:       grammar.Canonical(row.TipoNovedad),
			HoraInicioFin:     optional(row.HoraInicioFin),
			Motivo:            optional(row.Motivo),
			CedulaAutoriza:    optional(row.CedulaAutoriza),
			Area:              string(area),
			Quincena:          quincena,
			FechaConsulta:     consulta,
		}
		if row.FechaHoraExtra != "" {
			extra, ok := dateparse.ISO(row.FechaHoraExtra, year)
			if !ok {
				return nil, &validator.InvalidDateError{Row: row.RowIndex + 1, Value: row.FechaHoraExtra}
			}
			rec.FechaHoraExtra = &extra
		}
		records = append(records, rec)
	}

	n.log().Info("异常记录规范化完成",
		zap.String("area", string(area)),
		zap.Int("records", len(records)),
		zap.Int("warnings", len(doc.Warnings)),
	)
	return records, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
