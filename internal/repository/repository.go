package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	ScheduleRecord   ScheduleRecordRepository
	Novedad          NovedadRepository
	EmployeeRegistry EmployeeRegistryRepository
}

// NewRepository 创建 Repository 聚合
// db 为排班库，registry 为人员登记库
func NewRepository(db, registry *gorm.DB) *Repository {
	return &Repository{
		ScheduleRecord:   NewScheduleRecordRepo(db),
		Novedad:          NewNovedadRepo(db),
		EmployeeRegistry: NewEmployeeRegistryRepo(registry),
	}
}
