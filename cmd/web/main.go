package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/romanzzaa/mod-auth/internal/app"
	"github.com/romanzzaa/mod-auth/internal/config"
	"github.com/romanzzaa/mod-auth/internal/web"
	"github.com/romanzzaa/mod-auth/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	keyService, closeStore, err := app.NewKeyService(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init key service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	server, err := web.NewServer(keyService, logger)
	if err != nil {
		logger.Error("failed to init web server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	refresher := worker.NewRefresher(keyService, cfg.HTTP.RefreshInterval, logger)
	go refresher.Run(ctx)

	logger.Info("Starting web...",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("addr", cfg.HTTP.Addr))

	if err := server.Run(ctx, cfg.HTTP.Addr); err != nil {
		logger.Error("web server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Web stopped gracefully")
}
