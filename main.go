// @title Neon Club 后端 API
// @version 1.0
// @description Neon Club 护士职业发展平台的后端服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"neonclub_backend/internal/app"
	"neonclub_backend/internal/config"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移（及种子数据导入），完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.String("seed", "", "导入种子数据文件，例如 configs/seed.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly || *seed != ""
	cfg.MigrateOnly = *migrateOnly
	cfg.SeedFile = *seed

	if err := util.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
