package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/api/handler"
	"github.com/LDanielOchoa/Programacion-Areas/internal/api/router"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
	"github.com/LDanielOchoa/Programacion-Areas/internal/service"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/database"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/jwt"
	applogger "github.com/LDanielOchoa/Programacion-Areas/pkg/logger"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/redis"
)

func main() {
	// 1. 加载配置（.env → config.yaml → 环境变量）
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(os.Getenv("PROGRAMACION_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, "programacion-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.Bool("area_auth", cfg.Feature.AreaAuthEnabled),
	)

	// 3. 连接数据库：排班库 + 人员登记库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("排班库连接失败", zap.Error(err))
	}
	registryDB, err := database.NewDB(&cfg.RegistryDB, logger)
	if err != nil {
		logger.Fatal("人员登记库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移（仅排班库，登记库只读）
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var (
		rdb       *redis.Client
		blacklist service.TokenBlacklist
	)
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，会话黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		blacklist = rdb
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db, registryDB)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)

	pingers := []handler.Pinger{
		database.NewPinger("db", db),
		database.NewPinger("registry_db", registryDB),
	}
	if rdb != nil {
		pingers = append(pingers, rdb)
	}
	h := handler.NewHandler(cfg, svc, pingers...)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, svc.AreaAuth, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	for _, g := range []*gorm.DB{db, registryDB} {
		if closeDB, _ := g.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
