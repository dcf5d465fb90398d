package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
)

// NovedadRepository 排班异常数据访问接口
type NovedadRepository interface {
	// BatchCreate 在单个事务中插入全部异常记录，返回写入行数
	BatchCreate(ctx context.Context, novedades []model.Novedad) (int64, error)
}

type novedadRepo struct {
	db *gorm.DB
}

func NewNovedadRepo(db *gorm.DB) NovedadRepository {
	return &novedadRepo{db: db}
}

func (r *novedadRepo) BatchCreate(ctx context.Context, novedades []model.Novedad) (int64, error) {
	if len(novedades) == 0 {
		return 0, nil
	}
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.CreateInBatches(&novedades, insertBatchSize)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, translateError(err)
	}
	return affected, nil
}
