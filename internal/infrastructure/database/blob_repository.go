package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/romanzzaa/mod-auth/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// BlobRepository - аналог localStorage в Postgres: одна строка kv_store на ключ
type BlobRepository struct {
	db  *DB
	key string
}

func NewBlobRepository(db *DB, key string) *BlobRepository {
	return &BlobRepository{db: db, key: key}
}

// EnsureSchema создает таблицу, если ее еще нет
func (r *BlobRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create kv_store: %w", err)
	}
	return nil
}

func (r *BlobRepository) Load(ctx context.Context) (domain.KeysData, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, r.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.KeysData{}.Normalize(), nil
	}
	if err != nil {
		return domain.KeysData{}, fmt.Errorf("failed to load keys: %w", err)
	}

	var data domain.KeysData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.KeysData{}, fmt.Errorf("failed to decode keys blob: %w", err)
	}
	return data.Normalize(), nil
}

func (r *BlobRepository) Save(ctx context.Context, data domain.KeysData) error {
	raw, err := json.Marshal(data.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode keys: %w", err)
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, r.key, string(raw)); err != nil {
		return fmt.Errorf("failed to save keys: %w", err)
	}
	return nil
}

// Update - read-modify-write в одной транзакции. Пустая строка вставляется заранее,
// чтобы FOR UPDATE было что блокировать и при самой первой записи.
func (r *BlobRepository) Update(ctx context.Context, fn func(*domain.KeysData) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	seed := `INSERT INTO kv_store (key, value) VALUES ($1, '{"keys": []}') ON CONFLICT (key) DO NOTHING`
	if _, err := tx.ExecContext(ctx, seed, r.key); err != nil {
		return fmt.Errorf("failed to seed keys row: %w", err)
	}

	var raw []byte
	query := `SELECT value FROM kv_store WHERE key = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, r.key).Scan(&raw); err != nil {
		return fmt.Errorf("failed to lock keys row: %w", err)
	}

	var data domain.KeysData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode keys blob: %w", err)
	}
	data = data.Normalize()
	if err := fn(&data); err != nil {
		return err
	}

	out, err := json.Marshal(data.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode keys: %w", err)
	}
	update := `UPDATE kv_store SET value = $2, updated_at = NOW() WHERE key = $1`
	if _, err := tx.ExecContext(ctx, update, r.key, string(out)); err != nil {
		return fmt.Errorf("failed to save keys: %w", err)
	}
	return tx.Commit()
}
