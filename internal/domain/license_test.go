package domain_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/romanzzaa/mod-auth/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationText(t *testing.T) {
	assert.Equal(t, "3 минуты", domain.DurationText(3))
	assert.Equal(t, "7 дней", domain.DurationText(10080))
	assert.Equal(t, "30 дней", domain.DurationText(43200))
	assert.Equal(t, "90 дней", domain.DurationText(129600))
	assert.Equal(t, "5 минут", domain.DurationText(5))
	assert.Equal(t, "60 минут", domain.DurationText(60))
}

func TestNewKeyRecord(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	t.Run("Expiry", func(t *testing.T) {
		for _, d := range domain.Durations {
			rec, err := domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, d)
			require.NoError(t, err)
			assert.Equal(t, now.UnixMilli(), rec.CreatedAt)
			assert.Equal(t, now.UnixMilli()+int64(d)*60000, rec.ExpiresAt)
			assert.Equal(t, d, rec.Duration)
			assert.False(t, rec.Used)
			assert.Nil(t, rec.HWID)
			assert.Nil(t, rec.UsedAt)
		}
	})

	t.Run("Invalid duration", func(t *testing.T) {
		_, err := domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		_, err = domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, -5)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	})

	t.Run("Expiry overflow", func(t *testing.T) {
		limit := int((math.MaxInt64 - now.UnixMilli()) / 60000)

		rec, err := domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, limit)
		require.NoError(t, err)
		assert.Greater(t, rec.ExpiresAt, rec.CreatedAt)
		assert.Equal(t, domain.KeyStatusActive, rec.Status(now))

		_, err = domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, limit+1)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
		_, err = domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, math.MaxInt64/60000+1)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	})

	t.Run("JSON shape", func(t *testing.T) {
		rec, err := domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, 3)
		require.NoError(t, err)

		raw, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"key": "AAAA-BBBB-CCCC-DDDD",
			"createdAt": 1700000000000,
			"expiresAt": 1700000180000,
			"duration": 3,
			"hwid": null,
			"used": false,
			"usedAt": null
		}`, string(raw))
	})
}

func TestKeyStatus(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	ms := now.UnixMilli()

	t.Run("Expired overrides used", func(t *testing.T) {
		rec := domain.KeyRecord{ExpiresAt: ms - 1, Used: true}
		assert.Equal(t, domain.KeyStatusExpired, rec.Status(now))
		assert.Equal(t, "Истек", rec.Status(now).Text())

		rec.Used = false
		assert.Equal(t, "Истек", rec.Status(now).Text())
	})

	t.Run("Used", func(t *testing.T) {
		rec := domain.KeyRecord{ExpiresAt: ms + 1000, Used: true}
		assert.Equal(t, "Используется", rec.Status(now).Text())
		assert.Equal(t, "status-used", rec.Status(now).Class())
	})

	t.Run("Boundary is not expired", func(t *testing.T) {
		rec := domain.KeyRecord{ExpiresAt: ms, Used: true}
		assert.Equal(t, domain.KeyStatusUsed, rec.Status(now))

		rec.Used = false
		assert.Equal(t, domain.KeyStatusActive, rec.Status(now))
		assert.Equal(t, "Активен", rec.Status(now).Text())
		assert.Equal(t, "status-active", rec.Status(now).Class())
	})
}

func TestKeysDataDecode(t *testing.T) {
	var data domain.KeysData
	require.NoError(t, json.Unmarshal([]byte(`{}`), &data))
	assert.NotNil(t, data.Normalize().Keys)
	assert.Empty(t, data.Normalize().Keys)

	raw, err := json.Marshal(domain.KeysData{}.Normalize())
	require.NoError(t, err)
	assert.JSONEq(t, `{"keys": []}`, string(raw))
}
