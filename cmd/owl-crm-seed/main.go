package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	logpkg "owl-crm/common/logger"
	"owl-crm/internal/app"
	"owl-crm/internal/config"
	"owl-crm/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "owl-crm-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, app.WithoutMemoryFallback())
	if err != nil {
		logger.Fatal("Failed to initialize owl-crm-seed", zap.Error(err))
	}
	defer a.Close()
	if a.DB == nil {
		logger.Warn("DB_ENABLED=false, seeding the in-memory store only")
	}

	if _, err := seed.Run(ctx, a.Services, logger); err != nil {
		if errors.Is(err, seed.ErrAlreadySeeded) {
			logger.Info("Seed skipped: store already contains data")
			return
		}
		logger.Error("Seed failed", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
	fmt.Println("Seed complete")
}
