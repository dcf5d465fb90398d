package validator

import (
	"regexp"

	"github.com/LDanielOchoa/Programacion-Areas/internal/grammar"
	"github.com/LDanielOchoa/Programacion-Areas/internal/workbook"
)

// ErrorKind 逐单元格校验的错误类别
type ErrorKind string

const (
	KindFormat    ErrorKind = "format"
	KindMissing   ErrorKind = "missing"
	KindInvalid   ErrorKind = "invalid"
	KindDuplicate ErrorKind = "duplicate"
)

// ValidationError 单个单元格的校验错误，RowIndex/ColIndex 为工作表 0 基坐标
type ValidationError struct {
	RowIndex   int       `json:"rowIndex"`
	ColIndex   int       `json:"colIndex"`
	Cell       string    `json:"cell"`
	Value      string    `json:"value"`
	Kind       ErrorKind `json:"type"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// ValidateRows 对所有行做完整校验，累积全部错误；返回空切片才允许保存
func ValidateRows(doc *ScheduleDocument) []ValidationError {
	var errs []ValidationError
	add := func(row, col int, value string, kind ErrorKind, msg, suggestion string) {
		errs = append(errs, ValidationError{
			RowIndex:   row,
			ColIndex:   col,
			Cell:       workbook.CellName(row, col),
			Value:      value,
			Kind:       kind,
			Message:    msg,
			Suggestion: suggestion,
		})
	}

	for _, row := range doc.Rows {
		if row.ID != "" {
			if !digitsOnly.MatchString(row.ID) {
				add(row.RowIndex, idCol, row.ID, KindFormat, "Formato de cédula inválido", "La cédula solo debe contener números")
			}
			if row.Name == "" {
				add(row.RowIndex, nameCol, "", KindMissing, "Falta el nombre", "Ingrese el nombre del empleado")
			}
			if row.Position == "" {
				add(row.RowIndex, positionCol, "", KindMissing, "Falta el cargo", "Ingrese el cargo del empleado")
			}
		}

		for _, sc := range row.Shifts {
			tok := grammar.Classify(sc.Value)
			if tok.Valid() {
				continue
			}
			if grammar.LooksLikeMissingZero(sc.Value) {
				add(row.RowIndex, sc.Col, tok.Raw, KindFormat, "Formato de hora incorrecto",
					"La hora debe tener dos dígitos (por ejemplo 05:00 en lugar de 5:00)")
			} else {
				add(row.RowIndex, sc.Col, tok.Raw, KindFormat, "Formato de turno inválido",
					"Use el formato \"HH:MM - HH:MM\" o uno de los valores especiales permitidos")
			}
		}
	}

	seen := make(map[string]int)
	for _, row := range doc.Rows {
		if row.ID == "" {
			continue
		}
		if _, dup := seen[row.ID]; dup {
			add(row.RowIndex, idCol, row.ID, KindDuplicate, "Cédula duplicada", "Elimine o corrija uno de los registros repetidos")
			continue
		}
		seen[row.ID] = row.RowIndex
	}

	return errs
}
