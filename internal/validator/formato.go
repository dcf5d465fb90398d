// Package validator 排班表的结构校验与逐单元格校验
package validator

import (
	"strings"

	"github.com/LDanielOchoa/Programacion-Areas/internal/grammar"
	"github.com/LDanielOchoa/Programacion-Areas/internal/workbook"
)

// 排班表（formato programación）的固定布局，均为 0 基坐标：
// C9 负责人，C10 日期范围，A12:D12 表头，E12:K12 日期，第 13 行起为员工数据（B 身份证号，C 姓名，D 岗位）
const (
	responsibleRow = 8
	dateRangeRow   = 9
	metadataCol    = 2
	headerRow      = 11
	firstDataRow   = 12
	idCol          = 1
	nameCol        = 2
	positionCol    = 3
	firstDateCol   = 4
	lastDateCol    = 10
)

// DateColumn 日期表头
type DateColumn struct {
	Col    int
	Header string
}

// ShiftCell 某员工在某日期列上的排班单元格
type ShiftCell struct {
	Col    int
	Header string
	Value  string
}

// EmployeeScheduleRow 解析后的一行员工排班
type EmployeeScheduleRow struct {
	RowIndex int
	ID       string
	Name     string
	Position string
	Shifts   []ShiftCell
}

// ScheduleDocument 排班表解析结果
type ScheduleDocument struct {
	Responsible string
	DateRange   string
	Headers     []string
	DateColumns []DateColumn
	Rows        []EmployeeScheduleRow
	LunchRules  workbook.LunchRules
}

// ParseFormato 解析排班表：校验元数据、表头与日期列，转换为具名行，遇到第一个无法识别的班次即失败
func ParseFormato(m workbook.RawMatrix, lunch workbook.LunchRules) (*ScheduleDocument, error) {
	doc := &ScheduleDocument{LunchRules: lunch}

	doc.Responsible = m.Cell(responsibleRow, metadataCol)
	if doc.Responsible == "" {
		return nil, &MissingMetadataError{Field: "el nombre del responsable", Cell: workbook.CellName(responsibleRow, metadataCol)}
	}
	doc.DateRange = m.Cell(dateRangeRow, metadataCol)
	if doc.DateRange == "" {
		return nil, &MissingMetadataError{Field: "el rango de fechas", Cell: workbook.CellName(dateRangeRow, metadataCol)}
	}

	for col := 0; col < firstDateCol; col++ {
		h := m.Cell(headerRow, col)
		if h == "" {
			return nil, &MissingHeadersError{Cell: workbook.CellName(headerRow, col)}
		}
		doc.Headers = append(doc.Headers, h)
	}

	// 日期列从 E 开始连续排列，最多到 K
	width := len(m.Row(headerRow))
	if width > lastDateCol+1 {
		width = lastDateCol + 1
	}
	if width <= firstDateCol {
		return nil, &MissingDateColumnsError{Cell: workbook.CellName(headerRow, firstDateCol)}
	}
	for col := firstDateCol; col < width; col++ {
		h := m.Cell(headerRow, col)
		if h == "" {
			return nil, &MissingDateColumnsError{Cell: workbook.CellName(headerRow, col)}
		}
		doc.DateColumns = append(doc.DateColumns, DateColumn{Col: col, Header: h})
	}

	var haveID, haveName, havePosition bool
	for ri := firstDataRow; ri < len(m); ri++ {
		row := EmployeeScheduleRow{
			RowIndex: ri,
			ID:       m.Cell(ri, idCol),
			Name:     m.Cell(ri, nameCol),
			Position: m.Cell(ri, positionCol),
		}
		blank := row.ID == "" && row.Name == "" && row.Position == ""
		for _, dc := range doc.DateColumns {
			v := m.Cell(ri, dc.Col)
			if v != "" {
				blank = false
			}
			row.Shifts = append(row.Shifts, ShiftCell{Col: dc.Col, Header: dc.Header, Value: v})
		}
		if blank {
			continue
		}
		haveID = haveID || row.ID != ""
		haveName = haveName || row.Name != ""
		havePosition = havePosition || row.Position != ""
		doc.Rows = append(doc.Rows, row)
	}

	switch {
	case !haveID:
		return nil, ErrNoEmployeeIDs
	case !haveName:
		return nil, ErrNoEmployeeNames
	case !havePosition:
		return nil, ErrNoPositions
	}

	for _, row := range doc.Rows {
		for _, sc := range row.Shifts {
			if sc.Value != "" && !grammar.IsLenient(sc.Value) {
				return nil, &InvalidShiftFormatError{Cell: workbook.CellName(row.RowIndex, sc.Col), Value: sc.Value}
			}
		}
	}

	return doc, nil
}

// Employees 有身份证号的行
func (d *ScheduleDocument) Employees() []EmployeeScheduleRow {
	out := make([]EmployeeScheduleRow, 0, len(d.Rows))
	for _, r := range d.Rows {
		if r.ID != "" {
			out = append(out, r)
		}
	}
	return out
}

// AutoFix 为缺少前导零的小时补零，返回修改的单元格数量
func AutoFix(doc *ScheduleDocument) int {
	fixed := 0
	for ri := range doc.Rows {
		shifts := doc.Rows[ri].Shifts
		for si := range shifts {
			v := strings.TrimSpace(shifts[si].Value)
			if v == "" || grammar.IsSpecial(v) {
				continue
			}
			// 只有首尾空白差异的单元格不算修复
			if padded := grammar.PadHours(v); padded != v {
				shifts[si].Value = padded
				fixed++
			}
		}
	}
	return fixed
}
