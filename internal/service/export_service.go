package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportInvalidRange = errors.New("导出日期范围无效")
	ErrExportRangeTooLong = errors.New("导出日期范围不能超过 62 天")
	ErrExportNoRecords    = errors.New("该区域在所选日期内没有排班")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// maxExportDays 单次导出的最大天数
const maxExportDays = 62

// ExportService 导出业务接口
//
// 输出格式：
//   - 一个 Sheet，名称为区域名
//   - 行：身份证号（升序），列：日期（from..to，每天一列）
//   - 单元格：班次文本；同一天多条时以 " / " 连接；节假日分类附在括号中
type ExportService interface {
	ExportSchedule(ctx context.Context, req *dto.ExportScheduleRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportSchedule(ctx context.Context, req *dto.ExportScheduleRequest) (*bytes.Buffer, string, error) {
	// 1. 参数校验
	area, ok := dto.ParseArea(req.Area)
	if !ok {
		return nil, "", ErrUnknownArea
	}
	from, err1 := time.ParseInLocation(model.DateLayout, req.From, time.Local)
	to, err2 := time.ParseInLocation(model.DateLayout, req.To, time.Local)
	if err1 != nil || err2 != nil || to.Before(from) {
		return nil, "", ErrExportInvalidRange
	}
	days := int(to.Sub(from).Round(24*time.Hour)/(24*time.Hour)) + 1
	if days > maxExportDays {
		return nil, "", ErrExportRangeTooLong
	}

	// 2. 查询记录
	records, err := s.repo.ScheduleRecord.ListByAreaAndRange(ctx, string(area), from, to)
	if err != nil {
		s.logger.Error("查询排班记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	// 3. 构建索引: cedula → date → 单元格文本
	grid := make(map[int64]map[string][]string)
	for _, r := range records {
		date := r.FechaProgramacion.Format(model.DateLayout)
		text := r.Horario
		if r.Clasificacion != nil {
			text += " (" + *r.Clasificacion + ")"
		}
		if grid[r.Cedula] == nil {
			grid[r.Cedula] = make(map[string][]string)
		}
		grid[r.Cedula][date] = append(grid[r.Cedula][date], text)
	}
	cedulas := make([]int64, 0, len(grid))
	for c := range grid {
		cedulas = append(cedulas, c)
	}
	sort.Slice(cedulas, func(i, j int) bool { return cedulas[i] < cedulas[j] })

	dates := make([]string, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(model.DateLayout))
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := area.Info().Name
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	for i := range dates {
		col := colName(1 + i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s  %s ~ %s", sheetName, req.From, req.To))
	f.MergeCell(sheetName, "A1", cell(colName(len(dates)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "CEDULA")
	for i, d := range dates {
		f.SetCellValue(sheetName, cell(colName(1+i), row), d)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(dates)), row), headerStyle)

	// 数据行
	row = 3
	for _, c := range cedulas {
		f.SetCellValue(sheetName, cell("A", row), strconv.FormatInt(c, 10))
		for i, d := range dates {
			text := "-"
			if shifts, ok := grid[c][d]; ok {
				text = strings.Join(shifts, " / ")
			}
			f.SetCellValue(sheetName, cell(colName(1+i), row), text)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("programacion_%s_%s_%s.xlsx", area, req.From, req.To)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
