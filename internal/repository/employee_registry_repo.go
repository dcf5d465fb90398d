package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
)

// normalizedNIT 登记库中的 F200_NIT 以 latin1 存储且可能带不间断空格（CHAR(160)）
const normalizedNIT = "TRIM(REPLACE(CONVERT(F200_NIT USING latin1), CHAR(160), ''))"

// EmployeeRegistryRepository 人员登记库（只读）
type EmployeeRegistryRepository interface {
	// FindExisting 返回给定身份证号中存在于登记库的那些
	FindExisting(ctx context.Context, cedulas []string) ([]string, error)
}

type employeeRegistryRepo struct {
	db *gorm.DB
}

func NewEmployeeRegistryRepo(db *gorm.DB) EmployeeRegistryRepository {
	return &employeeRegistryRepo{db: db}
}

func (r *employeeRegistryRepo) FindExisting(ctx context.Context, cedulas []string) ([]string, error) {
	if len(cedulas) == 0 {
		return []string{}, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.ValidPerson{}).
		Select(normalizedNIT+" AS F200_ID").
		Where(normalizedNIT+" IN ?", cedulas).
		Pluck("F200_ID", &found).Error
	return found, err
}
