package database_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/romanzzaa/mod-auth/internal/domain"
	"github.com/romanzzaa/mod-auth/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectString(t *testing.T) {
	cfg := database.Config{
		Host: "db", Port: 5433, User: "admin", Password: "secret", DBName: "mod_auth", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5433 user=admin password=secret dbname=mod_auth sslmode=disable",
		cfg.ConnectString())
}

// Интеграционный тест: запускается только при заданном TEST_DB_HOST
func TestBlobRepository(t *testing.T) {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST is not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if port == 0 {
		port = 5432
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, database.Config{
		Host: host, Port: port, User: os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"), DBName: os.Getenv("TEST_DB_NAME"), SSLMode: "disable",
	})
	require.NoError(t, err)
	defer db.Close()

	repo := database.NewBlobRepository(db, "mod_keys_test")
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, "mod_keys_test")
	require.NoError(t, err)

	data, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Keys)

	want := domain.KeysData{Keys: []domain.KeyRecord{
		{Key: "AAAA-BBBB-CCCC-DDDD", CreatedAt: 1, ExpiresAt: 180001, Duration: 3},
	}}
	require.NoError(t, repo.Save(ctx, want))
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Run("Update", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, "mod_keys_test")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Update(ctx, func(data *domain.KeysData) error {
					data.Keys = append(data.Keys, domain.KeyRecord{Key: fmt.Sprintf("KEY-%d", i), Duration: 3})
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got.Keys, 8)
	})
}
