package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ComplaintClassifier/internal/app"
	"ComplaintClassifier/internal/config"
	"ComplaintClassifier/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	service, err := app.NewService(cfg, logger)
	if err != nil {
		logger.Error("service cannot start", "error", err)
		os.Exit(1)
	}

	if err := service.Run(ctx); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}
