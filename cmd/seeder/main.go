package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/romanzzaa/mod-auth/internal/app"
	"github.com/romanzzaa/mod-auth/internal/config"
	"github.com/romanzzaa/mod-auth/internal/domain"
)

func main() {
	// 1. Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Env != "local" {
		log.Fatal("Seeder allowed only in local environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	// 2. Storage + сервис
	keyService, closeStore, err := app.NewKeyService(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	// 3. Если ключи уже есть, не дублируем
	existing, err := keyService.List(ctx)
	if err != nil {
		log.Fatalf("Failed to load keys: %v", err)
	}
	if len(existing.Keys) > 0 {
		log.Printf("[Seeder] Found %d keys. Skipping creation.", len(existing.Keys))
		return
	}

	// 4. По одному ключу на каждый пресет срока
	for _, d := range domain.Durations {
		rec, err := keyService.Generate(ctx, d)
		if err != nil {
			log.Printf("⚠️ Failed to create key for %s: %v", domain.DurationText(d), err)
			continue
		}
		log.Printf("✅ Key created: %s (%s)", rec.Key, domain.DurationText(d))
	}
}
