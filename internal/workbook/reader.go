package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dateparse"
)

// oleMagic 旧版 .xls（OLE2 复合文档）文件头
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}

// maxXLSRows extrame/xls 读取的行数上限
const maxXLSRows = 100000

// maxXLSCols BIFF8 工作表的列数上限（IV 列）
const maxXLSCols = 256

// Reader 工作簿读取器
type Reader struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewReader 创建读取器；timeout <= 0 时使用 DefaultTimeout
func NewReader(timeout time.Duration, logger *zap.Logger) *Reader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{timeout: timeout, logger: logger}
}

// sheetSource 屏蔽 xlsx / xls 两种解码器的差异
type sheetSource interface {
	SheetNames() []string
	Rows(name string) (RawMatrix, error)
	Close() error
}

type result struct {
	wb  *Workbook
	err error
}

// Read 读取上传文件，定位目标工作表与午餐表，超时后返回 ErrReadTimeout
func (r *Reader) Read(ctx context.Context, src io.Reader, filename string, kind Kind) (*Workbook, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		wb, err := r.read(src, filename, kind)
		done <- result{wb: wb, err: err}
	}()

	select {
	case res := <-done:
		return res.wb, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.logger.Warn("读取 Excel 超时", zap.String("file", filename), zap.Duration("timeout", r.timeout))
			return nil, ErrReadTimeout
		}
		return nil, ctx.Err()
	}
}

func (r *Reader) read(src io.Reader, filename string, kind Kind) (*Workbook, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	source, err := open(data, filename)
	if err != nil {
		r.logger.Warn("无法解析 Excel 文件", zap.String("file", filename), zap.Error(err))
		return nil, ErrCorruptFile
	}
	defer source.Close()

	names := source.SheetNames()
	if len(names) == 0 {
		return nil, ErrEmptyWorkbook
	}

	marker := fold(kind.SheetMarker())
	var sheetName, lunchName string
	for _, name := range names {
		folded := fold(name)
		if sheetName == "" && strings.Contains(folded, marker) {
			sheetName = name
		}
		if lunchName == "" && folded == lunchSheetName {
			lunchName = name
		}
	}
	if sheetName == "" {
		return nil, fmt.Errorf("%w: el archivo no tiene una hoja llamada %q", ErrSheetNotFound, kind.SheetMarker())
	}

	var lunch LunchRules
	if lunchName != "" {
		rows, err := source.Rows(lunchName)
		if err != nil {
			return nil, fmt.Errorf("no se pudo leer la hoja de almuerzo: %w", err)
		}
		lunch = parseLunchRules(rows)
	}

	matrix, err := source.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer la hoja: %w", err)
	}
	if matrix.populated() < minPopulatedCells {
		return nil, ErrEmptyContent
	}

	r.logger.Debug("工作簿读取完成",
		zap.String("file", filename),
		zap.String("sheet", sheetName),
		zap.Int("rows", len(matrix)),
		zap.Int("lunch_rules", len(lunch)),
	)

	return &Workbook{
		Kind:       kind,
		SheetName:  sheetName,
		Matrix:     matrix,
		LunchRules: lunch,
	}, nil
}

func open(data []byte, filename string) (sheetSource, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if bytes.HasPrefix(data, oleMagic) || ext == ".xls" {
		return openXLS(data)
	}
	return openXLSX(data)
}

// ── xlsx（excelize）──

type xlsxSource struct {
	f *excelize.File
}

func openXLSX(data []byte) (sheetSource, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &xlsxSource{f: f}, nil
}

func (s *xlsxSource) SheetNames() []string { return s.f.GetSheetList() }

// Rows 返回按单元格格式显示的文本；日期格式的单元格改用原始序列号换算为 YYYY-MM-DD
func (s *xlsxSource) Rows(name string) (RawMatrix, error) {
	rows, err := s.f.GetRows(name)
	if err != nil {
		return nil, err
	}
	raw, err := s.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	for ri, row := range rows {
		if ri >= len(raw) {
			break
		}
		for ci, shown := range row {
			if ci >= len(raw[ri]) || raw[ri][ci] == shown {
				continue
			}
			t, ok := dateparse.Serial(raw[ri][ci])
			if !ok || !s.isDateCell(name, ri, ci) {
				continue
			}
			row[ci] = t.Format(dateparse.ISOLayout)
		}
	}
	return RawMatrix(rows), nil
}

func (s *xlsxSource) isDateCell(sheet string, row, col int) bool {
	styleID, err := s.f.GetCellStyle(sheet, CellName(row, col))
	if err != nil {
		return false
	}
	style, err := s.f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return isDateNumFmt(style.NumFmt)
}

// isDateNumFmt Excel 内置的日期类数字格式编号
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode 自定义格式去掉引号与方括号内容后含有日或年占位符即视为日期
func isDateFormatCode(code string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "dy")
}

func (s *xlsxSource) Close() error { return s.f.Close() }

// ── xls（extrame/xls）──

type xlsSource struct {
	wb *xls.WorkBook
}

func openXLS(data []byte) (sheetSource, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	// 复合文档中没有 Workbook / Book 流时 extrame/xls 返回 nil, nil
	if wb == nil {
		return nil, errors.New("复合文档中没有工作簿数据流")
	}
	return &xlsSource{wb: wb}, nil
}

func (s *xlsSource) SheetNames() []string {
	names := make([]string, 0, s.wb.NumSheets())
	for i := 0; i < s.wb.NumSheets(); i++ {
		if sheet := s.wb.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}
	return names
}

func (s *xlsSource) Rows(name string) (RawMatrix, error) {
	for i := 0; i < s.wb.NumSheets(); i++ {
		sheet := s.wb.GetSheet(i)
		if sheet == nil || sheet.Name != name {
			continue
		}
		var m RawMatrix
		for ri := 0; ri <= int(sheet.MaxRow) && ri < maxXLSRows; ri++ {
			row := xlsRow(sheet, ri)
			if row == nil {
				m = append(m, nil)
				continue
			}
			m = append(m, xlsCells(row))
		}
		return m, nil
	}
	return nil, fmt.Errorf("工作表 %q 不存在", name)
}

func (s *xlsSource) Close() error { return nil }

// xlsRow 取第 ri 行；extrame/xls 对没有任何记录的行会解引用空指针
func xlsRow(sheet *xls.WorkSheet, ri int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(ri)
}

// xlsCells 缺少 ROW 记录的行 LastCol 为 0，此时扫描全部列并去掉尾部空单元格
func xlsCells(row *xls.Row) []string {
	last := row.LastCol()
	if last <= 0 || last > maxXLSCols {
		last = maxXLSCols
	}
	cells := make([]string, last)
	for ci := row.FirstCol(); ci < last; ci++ {
		cells[ci] = row.Col(ci)
	}
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}
