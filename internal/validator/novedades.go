package validator

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dateparse"
	"github.com/LDanielOchoa/Programacion-Areas/internal/grammar"
	"github.com/LDanielOchoa/Programacion-Areas/internal/workbook"
)

// NovedadTypes 已知的异常类型
var NovedadTypes = []string{
	"AUSENCIA",
	"SUSPENSION",
	"LIC REM",
	"LIC NO REM",
	"INC ENF",
	"INC ACC",
	"CAMBIO TURNO",
	"HORA EXT NO PROG",
}

// NovedadHeaders 异常记录表的列标题，前三个用于定位表头行
var NovedadHeaders = []string{
	"FECHA PROGRAMACION",
	"CEDULA",
	"NOMBRE",
	"TIPO NOVEDAD",
	"FECHA HORA EXTRA",
	"HORA INICIO Y FIN",
	"MOTIVO",
	"NOMBRE DE QUIEN AUTORIZA",
	"CEDULA DE QUIEN AUTORIZA",
}

// metadataScanRows 在前 10 行中查找 Área: / Responsable:
const metadataScanRows = 10

// NovedadRow 一条异常记录
type NovedadRow struct {
	RowIndex          int
	FechaProgramacion string
	Cedula            string
	Nombre            string
	TipoNovedad       string
	FechaHoraExtra    string
	HoraInicioFin     string
	Motivo            string
	NombreAutoriza    string
	CedulaAutoriza    string
}

// NovedadesDocument 异常记录表解析结果
type NovedadesDocument struct {
	Area        string
	Responsible string
	Rows        []NovedadRow
	Warnings    []string
}

// IsKnownNovedadType 大小写不敏感地判断异常类型
func IsKnownNovedadType(s string) bool {
	c := grammar.Canonical(s)
	for _, t := range NovedadTypes {
		if t == c {
			return true
		}
	}
	return false
}

// ParseNovedades 解析异常记录表；未知异常类型只记录警告
func ParseNovedades(m workbook.RawMatrix, logger *zap.Logger) (*NovedadesDocument, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc := &NovedadesDocument{}

	for ri := 0; ri < metadataScanRows && ri < len(m); ri++ {
		label := grammar.Canonical(m.Cell(ri, 0))
		value := m.Cell(ri, 1)
		if value == "" {
			continue
		}
		switch label {
		case "ÁREA:", "AREA:":
			doc.Area = value
		case "RESPONSABLE:":
			doc.Responsible = value
		}
	}
	if doc.Responsible == "" {
		return nil, ErrMissingResponsible
	}
	if doc.Area == "" {
		return nil, ErrMissingArea
	}

	headerIdx := -1
	for ri := range m {
		if grammar.Canonical(m.Cell(ri, 0)) == NovedadHeaders[0] &&
			grammar.Canonical(m.Cell(ri, 1)) == NovedadHeaders[1] &&
			grammar.Canonical(m.Cell(ri, 2)) == NovedadHeaders[2] {
			headerIdx = ri
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrHeaderRowNotFound
	}

	year := time.Now().Year()
	for ri := headerIdx + 1; ri < len(m); ri++ {
		row := NovedadRow{
			RowIndex:          ri,
			FechaProgramacion: m.Cell(ri, 0),
			Cedula:            m.Cell(ri, 1),
			Nombre:            m.Cell(ri, 2),
			TipoNovedad:       m.Cell(ri, 3),
			FechaHoraExtra:    m.Cell(ri, 4),
			HoraInicioFin:     m.Cell(ri, 5),
			Motivo:            m.Cell(ri, 6),
			NombreAutoriza:    m.Cell(ri, 7),
			CedulaAutoriza:    m.Cell(ri, 8),
		}
		if row.FechaProgramacion == "" && row.Cedula == "" && row.Nombre == "" {
			continue
		}

		line := ri + 1
		if row.FechaProgramacion == "" || row.Cedula == "" || row.Nombre == "" || row.TipoNovedad == "" {
			return nil, &IncompleteRowError{Row: line}
		}
		if _, ok := dateparse.Parse(row.FechaProgramacion, year); !ok {
			return nil, &InvalidDateError{Row: line, Value: row.FechaProgramacion}
		}
		if row.FechaHoraExtra != "" {
			if _, ok := dateparse.Parse(row.FechaHoraExtra, year); !ok {
				return nil, &InvalidDateError{Row: line, Value: row.FechaHoraExtra}
			}
		}
		if !digitsOnly.MatchString(row.Cedula) {
			return nil, &InvalidCedulaError{Row: line, Value: row.Cedula}
		}
		if !IsKnownNovedadType(row.TipoNovedad) {
			msg := fmt.Sprintf("fila %d: tipo de novedad no reconocido: %s", line, grammar.Canonical(row.TipoNovedad))
			logger.Warn("异常类型未识别",
				zap.Int("row", line),
				zap.String("tipo_novedad", row.TipoNovedad),
			)
			doc.Warnings = append(doc.Warnings, msg)
		}
		if row.HoraInicioFin != "" {
			tok := grammar.Classify(row.HoraInicioFin)
			if tok.Kind != grammar.KindTimeRange && tok.Kind != grammar.KindSpecial {
				return nil, &InvalidTimeFormatError{Row: line, Value: row.HoraInicioFin}
			}
		}
		doc.Rows = append(doc.Rows, row)
	}

	if len(doc.Rows) == 0 {
		return nil, ErrNoRecords
	}
	return doc, nil
}
