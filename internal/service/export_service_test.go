package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
)

func day(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.Local) }

func TestExportService_ExportSchedule(t *testing.T) {
	repo, mocks := newMockRepository()
	festivo := "Festivo"
	mocks.schedule.records = []model.ScheduleRecord{
		{Cedula: 654321, FechaProgramacion: day(10), Horario: "DESCANSO", Area: "Lavado"},
		{Cedula: 123456, FechaProgramacion: day(10), Horario: "07:30 - 15:30", Area: "Lavado"},
		{Cedula: 123456, FechaProgramacion: day(10), Horario: "16:00 - 18:00", Area: "Lavado"},
		{Cedula: 123456, FechaProgramacion: day(12), Horario: "DESCANSO", Area: "Lavado", Clasificacion: &festivo},
		{Cedula: 777777, FechaProgramacion: day(10), Horario: "DESCANSO", Area: "Vigilantes"},
	}
	svc := NewExportService(repo, zap.NewNop())

	buf, filename, err := svc.ExportSchedule(context.Background(), &dto.ExportScheduleRequest{
		Area: "lavado", From: "2026-03-10", To: "2026-03-12",
	})
	if err != nil {
		t.Fatalf("ExportSchedule 失败: %v", err)
	}
	if filename != "programacion_Lavado_2026-03-10_2026-03-12.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("无法打开生成的文件: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Lavado")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	// 标题 + 表头 + 2 名员工
	if len(rows) != 4 {
		t.Fatalf("期望 4 行，实际: %d", len(rows))
	}
	if got := strings.Join(rows[1], ","); got != "CEDULA,2026-03-10,2026-03-11,2026-03-12" {
		t.Errorf("表头错误: %s", got)
	}
	if got := strings.Join(rows[2], ","); got != "123456,07:30 - 15:30 / 16:00 - 18:00,-,DESCANSO (Festivo)" {
		t.Errorf("第一名员工错误: %s", got)
	}
	if rows[3][0] != "654321" {
		t.Errorf("员工应按身份证号升序，实际: %v", rows[3])
	}
}

func TestExportService_ExportSchedule_Errors(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	tests := []struct {
		name string
		req  dto.ExportScheduleRequest
		want error
	}{
		{"未知区域", dto.ExportScheduleRequest{Area: "Cocina", From: "2026-03-10", To: "2026-03-12"}, ErrUnknownArea},
		{"日期格式错误", dto.ExportScheduleRequest{Area: "Lavado", From: "10/03/2026", To: "2026-03-12"}, ErrExportInvalidRange},
		{"结束早于开始", dto.ExportScheduleRequest{Area: "Lavado", From: "2026-03-12", To: "2026-03-10"}, ErrExportInvalidRange},
		{"范围过长", dto.ExportScheduleRequest{Area: "Lavado", From: "2026-01-01", To: "2026-06-30"}, ErrExportRangeTooLong},
		{"无记录", dto.ExportScheduleRequest{Area: "Lavado", From: "2026-03-10", To: "2026-03-12"}, ErrExportNoRecords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.ExportSchedule(context.Background(), &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}
