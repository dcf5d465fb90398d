package service

import (
	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Employee EmployeeService
	Schedule ScheduleService
	Novedad  NovedadService
	AreaAuth AreaAuthService
	Export   ExportService
}

// NewService 创建 Service 聚合
// blacklist 为 nil 时会话注销只在客户端生效
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Employee: NewEmployeeService(repo, logger),
		Schedule: NewScheduleService(cfg, repo, logger),
		Novedad:  NewNovedadService(repo, logger),
		AreaAuth: NewAreaAuthService(cfg, jwtMgr, blacklist, logger),
		Export:   NewExportService(repo, logger),
	}
}
