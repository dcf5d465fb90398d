package workbook

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

// ── 读取阶段错误，文本直接展示给各区域的使用者 ──

var (
	ErrSheetNotFound = errors.New("no se encontró la hoja requerida")
	ErrEmptyWorkbook = errors.New("el archivo de Excel no contiene hojas")
	ErrEmptyContent  = errors.New("la hoja está vacía")
	ErrCorruptFile   = errors.New("el archivo no es un documento de Excel válido o está dañado")
	ErrReadTimeout   = errors.New("el archivo es demasiado grande o complejo; se agotó el tiempo de lectura")
)

// DefaultTimeout 读取文件的时间上限
const DefaultTimeout = 30 * time.Second

// Kind 上传的排班类型
type Kind string

const (
	KindFormato   Kind = "formato"
	KindNovedades Kind = "novedades"
)

// ParseKind 解析命令行 / 请求中传入的类型
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindFormato:
		return KindFormato, nil
	case KindNovedades:
		return KindNovedades, nil
	}
	return "", errors.New("el tipo debe ser formato o novedades")
}

// SheetMarker 目标工作表名称中必须包含的标记（大小写不敏感）
func (k Kind) SheetMarker() string {
	if k == KindNovedades {
		return "Formato de novedades"
	}
	return "Formato programación"
}

// lunchSheetName 午餐扣除辅助表
const lunchSheetName = "almuerzo"

// lunchFirstRow 午餐规则从第 13 行开始（0 基 12）
const lunchFirstRow = 12

// minPopulatedCells 少于该数量的非空单元格视为空表
const minPopulatedCells = 2

// RawMatrix 工作表的二维单元格文本，解析后不再修改
type RawMatrix [][]string

// Cell 越界安全地取单元格文本（去除首尾空白）
func (m RawMatrix) Cell(row, col int) string {
	if row < 0 || row >= len(m) {
		return ""
	}
	r := m[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Row 越界安全地取整行
func (m RawMatrix) Row(row int) []string {
	if row < 0 || row >= len(m) {
		return nil
	}
	return m[row]
}

func (m RawMatrix) populated() int {
	n := 0
	for _, row := range m {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				n++
			}
		}
	}
	return n
}

// LunchRule 午餐扣除规则：时间文本 → 扣除小时数
type LunchRule struct {
	TimeLabel string  `json:"time"`
	Deduction float64 `json:"deduction"`
}

// LunchRules 规则表，按时间文本精确查找
type LunchRules []LunchRule

// Lookup 精确匹配时间文本
func (rs LunchRules) Lookup(label string) (float64, bool) {
	for _, r := range rs {
		if r.TimeLabel == label {
			return r.Deduction, true
		}
	}
	return 0, false
}

// Workbook 读取结果
type Workbook struct {
	Kind       Kind
	SheetName  string
	Matrix     RawMatrix
	LunchRules LunchRules
}

// CellName 0 基坐标转换为表格引用（如 E13）
func CellName(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "R" + strconv.Itoa(row+1) + "C" + strconv.Itoa(col+1)
	}
	return name
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func parseLunchRules(m RawMatrix) LunchRules {
	var rules LunchRules
	for i := lunchFirstRow; i < len(m); i++ {
		label := m.Cell(i, 1)
		raw := m.Cell(i, 2)
		if label == "" || raw == "" {
			continue
		}
		d, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			d = 0
		}
		rules = append(rules, LunchRule{TimeLabel: label, Deduction: d})
	}
	return rules
}
