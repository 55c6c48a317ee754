package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/romanzzaa/mod-auth/internal/config"
	"github.com/romanzzaa/mod-auth/internal/domain"
	"github.com/romanzzaa/mod-auth/internal/infrastructure/database"
	"github.com/romanzzaa/mod-auth/internal/infrastructure/remote"
	"github.com/romanzzaa/mod-auth/internal/infrastructure/storage"
	"github.com/romanzzaa/mod-auth/internal/usecase"
)

// OpenStore выбирает хранилище по cfg.Storage.Driver. Функция закрытия всегда не nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.KeyStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return storage.NewMemoryStore(cfg.Storage.Key), noop, nil

	case config.StoragePostgres:
		db, err := database.NewConnection(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, noop, err
		}
		repo := database.NewBlobRepository(db, cfg.Storage.Key)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		logger.Info("Using postgres storage", slog.String("host", cfg.Database.Host), slog.String("key", cfg.Storage.Key))
		return repo, db.Close, nil

	case config.StorageFile:
		fs, err := storage.NewFileStore(cfg.Storage.Dir, cfg.Storage.Key)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Using file storage", slog.String("path", fs.Path()))
		return fs, noop, nil
	}

	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// NewKeyService собирает KeyService со всеми зависимостями из конфига
func NewKeyService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*usecase.KeyService, func() error, error) {
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, closeStore, fmt.Errorf("failed to open storage: %w", err)
	}

	remoteClient := remote.NewClient(cfg.Remote.KeysURL, cfg.Remote.Timeout, logger)
	svc := usecase.NewKeyService(store, remoteClient, logger, usecase.WithLocation(cfg.Location))
	return svc, closeStore, nil
}
