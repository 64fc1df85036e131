package main

import (
	"context"
	"log"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/repository/implementations"
	"github.com/api-sage/interop-settlement/src/internal/config"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Configure(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := implementations.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	applied, err := implementations.RunMigrations(ctx, db, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	logger.Info("migrations completed successfully", logger.Fields{"applied": applied})
}
