package validator

import (
	"errors"
	"fmt"
)

// ── 结构性错误（解析阶段，文件无法继续处理），文本直接展示给使用者 ──

var (
	ErrNoEmployeeIDs      = errors.New("no se encontraron cédulas en la columna B")
	ErrNoEmployeeNames    = errors.New("no se encontraron nombres en la columna C")
	ErrNoPositions        = errors.New("no se encontraron cargos en la columna D")
	ErrMissingArea        = errors.New("no se encontró el área (Área:) en el archivo")
	ErrMissingResponsible = errors.New("no se encontró el responsable (Responsable:) en el archivo")
	ErrHeaderRowNotFound  = errors.New("no se encontró la fila de encabezados en el archivo")
	ErrNoRecords          = errors.New("el archivo no contiene registros válidos")
)

// MissingMetadataError 固定位置的元数据单元格为空
type MissingMetadataError struct {
	Field string
	Cell  string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("no se encontró %s en la celda %s", e.Field, e.Cell)
}

// MissingHeadersError 固定表头缺失，Cell 为第一个空的表头单元格
type MissingHeadersError struct {
	Cell string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("no se encontraron los encabezados correctos (A12:D12) en la celda %s", e.Cell)
}

// MissingDateColumnsError 日期表头缺失，Cell 为第一个空的日期单元格
type MissingDateColumnsError struct {
	Cell string
}

func (e *MissingDateColumnsError) Error() string {
	return fmt.Sprintf("no se encontraron las fechas (E12:K12) en la celda %s", e.Cell)
}

// InvalidShiftFormatError 排班单元格无法识别
type InvalidShiftFormatError struct {
	Cell  string
	Value string
}

func (e *InvalidShiftFormatError) Error() string {
	return fmt.Sprintf("formato de turno inválido en la celda %s (%q): use \"HH:MM - HH:MM\" o un valor especial como DESCANSO o VACACIONES", e.Cell, e.Value)
}

// ── 异常记录（novedades）错误，Row 为表格中的 1 基行号 ──

// IncompleteRowError 日期、身份证号、姓名、类型缺少任意一项
type IncompleteRowError struct {
	Row int
}

func (e *IncompleteRowError) Error() string {
	return fmt.Sprintf("fila %d incompleta: se requieren fecha, cédula, nombre y tipo de novedad", e.Row)
}

// InvalidDateError 日期无法解析
type InvalidDateError struct {
	Row   int
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("fecha inválida en la fila %d: %s", e.Row, e.Value)
}

// InvalidCedulaError 身份证号不是数字
type InvalidCedulaError struct {
	Row   int
	Value string
}

func (e *InvalidCedulaError) Error() string {
	return fmt.Sprintf("cédula inválida en la fila %d: %s", e.Row, e.Value)
}

// InvalidTimeFormatError 时间段既不是 HH:MM - HH:MM 也不是特殊值
type InvalidTimeFormatError struct {
	Row   int
	Value string
}

func (e *InvalidTimeFormatError) Error() string {
	return fmt.Sprintf("formato de hora inválido en la fila %d (%q): use \"HH:MM - HH:MM\" o un valor especial", e.Row, e.Value)
}
