//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/database"
	pkgerrors "github.com/LDanielOchoa/Programacion-Areas/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3307)/programacion_test?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true"
	}

	var err error
	testDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}
	if err := testDB.Exec("CREATE TABLE IF NOT EXISTS personas_validas (F200_NIT VARBINARY(30) NOT NULL)").Error; err != nil {
		fmt.Fprintf(os.Stderr, "创建登记表失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// testArea 每个测试使用独立区域名，避免相互干扰
func testArea(t *testing.T) string {
	t.Helper()
	area := fmt.Sprintf("T%d", time.Now().UnixNano()%1_000_000_000)
	t.Cleanup(func() {
		testDB.Where("Area = ?", area).Delete(&model.ScheduleRecord{})
		testDB.Where("AREA = ?", area).Delete(&model.Novedad{})
	})
	return area
}

func record(area string, cedula int64, date, horario string) model.ScheduleRecord {
	d, _ := time.ParseInLocation(model.DateLayout, date, time.Local)
	return model.ScheduleRecord{
		Cedula:            cedula,
		FechaProgramacion: d,
		Horario:           horario,
		Area:              area,
		Quincena:          "Q1_Marzo_2026",
		FechaConsulta:     time.Now(),
	}
}

// ═══════════════════════════════════════════════════════════
// programacion_turnos
// ═══════════════════════════════════════════════════════════

func TestScheduleRecord_BatchCreateAndExistingDates(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB, testDB)
	area := testArea(t)

	ids, err := repo.ScheduleRecord.BatchCreate(ctx, []model.ScheduleRecord{
		record(area, 123456, "2026-03-10", "07:00 - 15:00"),
		record(area, 123456, "2026-03-11", "DESCANSO"),
		record(area, 654321, "2026-03-10", "07:00 - 15:00"),
	})
	if err != nil {
		t.Fatalf("BatchCreate 失败: %v", err)
	}
	if len(ids) != 3 || ids[0] == 0 || ids[2] <= ids[0] {
		t.Errorf("自增 ID 错误: %v", ids)
	}

	dates, err := repo.ScheduleRecord.ExistingDates(ctx, area, []string{"2026-03-09", "2026-03-10", "2026-03-11"})
	if err != nil {
		t.Fatalf("ExistingDates 失败: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-03-10" || dates[1] != "2026-03-11" {
		t.Errorf("期望 [2026-03-10 2026-03-11]，实际 %v", dates)
	}

	other, _ := repo.ScheduleRecord.ExistingDates(ctx, area+"x", []string{"2026-03-10"})
	if len(other) != 0 {
		t.Errorf("其他区域不应有冲突，实际 %v", other)
	}
}

func TestScheduleRecord_DuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB, testDB)
	area := testArea(t)

	_, err := repo.ScheduleRecord.BatchCreate(ctx, []model.ScheduleRecord{
		record(area, 111111, "2026-03-12", "07:00 - 15:00"),
		record(area, 111111, "2026-03-12", "07:00 - 15:00"),
	})
	var dup *repository.DuplicateEntryError
	if !errors.As(err, &dup) || !errors.Is(err, pkgerrors.ErrDuplicateRecord) {
		t.Fatalf("期望唯一键冲突，实际 %v", err)
	}
	if dup.Entry == "" {
		t.Error("应解析出冲突值")
	}

	var count int64
	testDB.Model(&model.ScheduleRecord{}).Where("Area = ?", area).Count(&count)
	if count != 0 {
		t.Errorf("事务应整体回滚，实际残留 %d 条", count)
	}
}

func TestScheduleRecord_ListByAreaAndRange(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB, testDB)
	area := testArea(t)

	if _, err := repo.ScheduleRecord.BatchCreate(ctx, []model.ScheduleRecord{
		record(area, 222222, "2026-03-01", "DESCANSO"),
		record(area, 222222, "2026-03-20", "07:00 - 15:00"),
	}); err != nil {
		t.Fatal(err)
	}

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)
	got, err := repo.ScheduleRecord.ListByAreaAndRange(ctx, area, from, to)
	if err != nil {
		t.Fatalf("ListByAreaAndRange 失败: %v", err)
	}
	if len(got) != 1 || got[0].Horario != "DESCANSO" {
		t.Errorf("期望 1 条 DESCANSO，实际 %+v", got)
	}
}

// ═══════════════════════════════════════════════════════════
// novedades / personas_validas
// ═══════════════════════════════════════════════════════════

func TestNovedad_BatchCreate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB, testDB)
	area := testArea(t)

	n, err := repo.Novedad.BatchCreate(ctx, []model.Novedad{{
		FechaProgramacion: time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local),
		Cedula:            123456,
		TipoNovedad:       "INCAPACIDAD",
		Area:              area,
		Quincena:          "Q1_Marzo_2026",
		FechaConsulta:     time.Now(),
	}})
	if err != nil || n != 1 {
		t.Fatalf("BatchCreate = %d, %v", n, err)
	}
}

func TestEmployeeRegistry_FindExisting(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB, testDB)

	// 第二条带不间断空格（latin1 0xA0）
	if err := testDB.Exec("INSERT INTO personas_validas (F200_NIT) VALUES (?), (CONCAT(?, CHAR(160)))", "70123456", "70654321").Error; err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		testDB.Exec("DELETE FROM personas_validas WHERE F200_NIT LIKE '70%'")
	})

	found, err := repo.EmployeeRegistry.FindExisting(ctx, []string{"70123456", "70654321", "70999999"})
	if err != nil {
		t.Fatalf("FindExisting 失败: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("期望找到 2 人，实际 %v", found)
	}
}
