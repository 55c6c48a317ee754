package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config - глобальная конфигурация сервисов
type Config struct {
	Env string // "local", "prod"

	Storage  StorageConfig
	Database DatabaseConfig
	Remote   RemoteConfig
	HTTP     HTTPConfig
	Telegram TelegramConfig

	Location *time.Location // часовой пояс для дат в списке
}

type StorageConfig struct {
	Driver string // file, memory, postgres
	Dir    string
	Key    string // ключ блоба, как в localStorage
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RemoteConfig struct {
	KeysURL string
	Timeout time.Duration
}

type HTTPConfig struct {
	Addr            string
	RefreshInterval time.Duration
}

type TelegramConfig struct {
	BotToken string
	AdminID  int64
}

// LoadConfig - загружает настройки из ENV (.env подхватывается через godotenv/autoload в main)
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "local"),
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StorageFile),
			Dir:    getEnv("STORAGE_DIR", "data"),
			Key:    getEnv("STORAGE_KEY", "mod_keys"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "mod_auth"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Remote: RemoteConfig{
			KeysURL: getEnv("KEYS_URL", "https://YOUR_USERNAME.github.io/mod-auth/keys.json"),
		},
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
	}

	var err error
	if cfg.Database.Port, err = getInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.Remote.Timeout, err = getDuration("REMOTE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTP.RefreshInterval, err = getDuration("REFRESH_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if raw := os.Getenv("TELEGRAM_ADMIN_ID"); raw != "" {
		if cfg.Telegram.AdminID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
	}

	cfg.Location = time.Local
	if name := os.Getenv("TZ_NAME"); name != "" {
		if cfg.Location, err = time.LoadLocation(name); err != nil {
			return nil, fmt.Errorf("invalid TZ_NAME: %w", err)
		}
	}

	switch cfg.Storage.Driver {
	case StorageFile, StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func getDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
