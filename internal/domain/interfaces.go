package domain

import (
	"context"
	"time"
)

// KeyStore - хранилище одного блоба {keys: [...]} под одним ключом
type KeyStore interface {
	// Load возвращает пустой KeysData, если под ключом еще ничего не сохранено
	Load(ctx context.Context) (KeysData, error)

	// Save перезаписывает блоб целиком
	Save(ctx context.Context, data KeysData) error
	// Update - read-modify-write под одной блокировкой (в том числе между процессами).
	// Если fn вернула ошибку, блоб не меняется.
	Update(ctx context.Context, fn func(*KeysData) error) error
}

// RemoteSource - опубликованный список ключей (GitHub Pages).
// Ошибки не возвращает: при любом сбое отдает пустой список.
type RemoteSource interface {
	Fetch(ctx context.Context) KeysData
}

// Clock - источник текущего времени
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
