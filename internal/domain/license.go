package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const msPerMinute = int64(time.Minute / time.Millisecond)

var (
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrInvalidPayload  = errors.New("payload is not a keys document")
)

// KeyRecord - сгенерированный ключ и его метаданные.
// Имена JSON полей совпадают с форматом keys.json.
type KeyRecord struct {
	Key       string  `json:"key"`
	CreatedAt int64   `json:"createdAt"` // epoch ms
	ExpiresAt int64   `json:"expiresAt"` // epoch ms
	Duration  int     `json:"duration"`  // минуты
	HWID      *string `json:"hwid"`
	Used      bool    `json:"used"`
	UsedAt    *int64  `json:"usedAt"`
}

// KeysData - контейнер, который хранится одним блобом и выгружается в keys.json
type KeysData struct {
	Keys []KeyRecord `json:"keys"`
}

// NewKeyRecord собирает запись для ключа, созданного в момент now
func NewKeyRecord(key string, now time.Time, minutes int) (KeyRecord, error) {
	if minutes <= 0 {
		return KeyRecord{}, fmt.Errorf("%w: %d", ErrInvalidDuration, minutes)
	}

	createdAt := now.UnixMilli()
	// expiresAt не должен переполнить int64
	if int64(minutes) > (math.MaxInt64-createdAt)/msPerMinute {
		return KeyRecord{}, fmt.Errorf("%w: %d is too large", ErrInvalidDuration, minutes)
	}
	return KeyRecord{
		Key:       key,
		CreatedAt: createdAt,
		ExpiresAt: createdAt + int64(minutes)*msPerMinute,
		Duration:  minutes,
	}, nil
}

// Status возвращает статус ключа на момент now.
// Истекший ключ важнее использованного.
func (k KeyRecord) Status(now time.Time) KeyStatus {
	switch {
	case now.UnixMilli() > k.ExpiresAt:
		return KeyStatusExpired
	case k.Used:
		return KeyStatusUsed
	default:
		return KeyStatusActive
	}
}

// Normalize заменяет nil на пустой список, чтобы в JSON всегда был массив
func (d KeysData) Normalize() KeysData {
	if d.Keys == nil {
		d.Keys = []KeyRecord{}
	}
	return d
}
