package handler

import (
	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Programacion *ProgramacionHandler
	AreaSession  *AreaSessionHandler
	Export       *ExportHandler
	Health       *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, pingers ...Pinger) *Handler {
	return &Handler{
		Programacion: NewProgramacionHandler(svc.Employee, svc.Schedule, svc.Novedad, newDebugInfo(cfg)),
		AreaSession:  NewAreaSessionHandler(svc.AreaAuth),
		Export:       NewExportHandler(svc.Export),
		Health:       NewHealthHandler(pingers...),
	}
}
