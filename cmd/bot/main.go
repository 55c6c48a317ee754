package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/joho/godotenv/autoload"

	"github.com/romanzzaa/mod-auth/internal/app"
	"github.com/romanzzaa/mod-auth/internal/bot"
	"github.com/romanzzaa/mod-auth/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Telegram.AdminID == 0 {
		logger.Error("TELEGRAM_ADMIN_ID is required")
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

	tgBot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error("failed to init telegram bot", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tgBot.Debug = false
	logger.Info("Telegram bot authorized", slog.String("username", tgBot.Self.UserName))

	botHandler := bot.NewHandler(tgBot, keyService, cfg.Telegram.AdminID, logger)

	logger.Info("Starting bot...",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver))

	go botHandler.Start(ctx)

	<-ctx.Done()
	logger.Info("Bot stopped gracefully")
}
