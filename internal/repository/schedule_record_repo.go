package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
)

// insertBatchSize 单条 INSERT 语句的最大行数
const insertBatchSize = 500

// ScheduleRecordRepository 排班记录数据访问接口
type ScheduleRecordRepository interface {
	// BatchCreate 在单个事务中插入全部记录，任一失败整体回滚；返回自增 ID
	BatchCreate(ctx context.Context, records []model.ScheduleRecord) ([]int64, error)
	// ExistingDates 区域在给定日期中已有排班的日期（YYYY-MM-DD，升序）
	ExistingDates(ctx context.Context, area string, dates []string) ([]string, error)
	ListByAreaAndRange(ctx context.Context, area string, from, to time.Time) ([]model.ScheduleRecord, error)
}

type scheduleRecordRepo struct {
	db *gorm.DB
}

func NewScheduleRecordRepo(db *gorm.DB) ScheduleRecordRepository {
	return &scheduleRecordRepo{db: db}
}

func (r *scheduleRecordRepo) BatchCreate(ctx context.Context, records []model.ScheduleRecord) ([]int64, error) {
	if len(records) == 0 {
		return []int64{}, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&records, insertBatchSize).Error
	})
	if err != nil {
		return nil, translateError(err)
	}

	ids := make([]int64, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	return ids, nil
}

func (r *scheduleRecordRepo) ExistingDates(ctx context.Context, area string, dates []string) ([]string, error) {
	if len(dates) == 0 {
		return []string{}, nil
	}
	var found []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.ScheduleRecord{}).
		Distinct("Fecha_programacion").
		Where("Area = ? AND Fecha_programacion IN ?", area, dates).
		Order("Fecha_programacion ASC").
		Pluck("Fecha_programacion", &found).Error
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(found))
	for _, d := range found {
		out = append(out, d.Format(model.DateLayout))
	}
	return out, nil
}

func (r *scheduleRecordRepo) ListByAreaAndRange(ctx context.Context, area string, from, to time.Time) ([]model.ScheduleRecord, error) {
	var records []model.ScheduleRecord
	err := r.db.WithContext(ctx).
		Where("Area = ? AND Fecha_programacion BETWEEN ? AND ?",
			area, from.Format(model.DateLayout), to.Format(model.DateLayout)).
		Order("CEDULA ASC, Fecha_programacion ASC, id ASC").
		Find(&records).Error
	return records, err
}
