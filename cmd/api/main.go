package main

import (
	"context"
	"log"

	"github.com/vipin760/hand-pass-BE/internal/app"
	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/database"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration loading failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Failed to sync logger: %v", err)
		}
	}()

	ctx := context.Background()
	metrics := observability.NewMetrics()

	db, err := database.NewMySQL(ctx, &cfg.Database, metrics, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	container, err := app.NewContainer(ctx, cfg, db, logger)
	if err != nil {
		log.Fatalf("Failed to build application container: %v", err)
	}

	server := app.NewServer(container)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
