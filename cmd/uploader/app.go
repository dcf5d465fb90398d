package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/reconcile"
	"github.com/LDanielOchoa/Programacion-Areas/internal/session"
	"github.com/LDanielOchoa/Programacion-Areas/internal/workbook"
	applogger "github.com/LDanielOchoa/Programacion-Areas/pkg/logger"
)

// app 一次命令执行所需的依赖
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *reconcile.Client
}

func newApp() (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewCLILogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	path := cfg.Client.SessionFile
	if path == "" {
		if path, err = session.DefaultPath(); err != nil {
			return nil, err
		}
	}

	client := reconcile.New(reconcile.Options{
		BaseURL:          cfg.Client.BaseURL,
		EmployeesTimeout: cfg.Client.EmployeesTimeout,
		DatesTimeout:     cfg.Client.DatesTimeout,
		SaveTimeout:      cfg.Client.SaveTimeout,
		Sessions:         session.NewFileStore(path),
		Logger:           logger,
	})
	return &app{cfg: cfg, logger: logger, client: client}, nil
}

func (a *app) close() { _ = a.logger.Sync() }

// requireArea 解析 --area 参数
func requireArea() (dto.AreaType, error) {
	if areaFlag == "" {
		return "", fmt.Errorf("必须通过 --area 指定区域")
	}
	area, ok := dto.ParseArea(areaFlag)
	if !ok {
		return "", fmt.Errorf("未知区域 %q，可用 uploader areas 查看", areaFlag)
	}
	return area, nil
}

// readWorkbook 打开文件并定位目标工作表
func readWorkbook(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string, kind workbook.Kind) (*workbook.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	var timeout = workbook.DefaultTimeout
	if cfg != nil && cfg.Client.ReadTimeout > 0 {
		timeout = cfg.Client.ReadTimeout
	}
	return workbook.NewReader(timeout, logger).Read(ctx, f, filepath.Base(path), kind)
}
