package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/romanzzaa/mod-auth/internal/domain"
)

// MemoryStore держит сериализованные блобы в памяти, как localStorage
type MemoryStore struct {
	key   string
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{
		key:   key,
		blobs: make(map[string][]byte),
	}
}

func (s *MemoryStore) Load(ctx context.Context) (domain.KeysData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decode()
}

func (s *MemoryStore) Save(ctx context.Context, data domain.KeysData) error {
	return s.Update(ctx, func(d *domain.KeysData) error {
		*d = data
		return nil
	})
}

func (s *MemoryStore) Update(ctx context.Context, fn func(*domain.KeysData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.decode()
	if err != nil {
		return err
	}
	if err := fn(&data); err != nil {
		return err
	}

	raw, err := json.Marshal(data.Normalize())
	if err != nil {
		return err
	}
	s.blobs[s.key] = raw
	return nil
}

func (s *MemoryStore) decode() (domain.KeysData, error) {
	raw, ok := s.blobs[s.key]
	if !ok {
		return domain.KeysData{}.Normalize(), nil
	}
	var data domain.KeysData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.KeysData{}, err
	}
	return data.Normalize(), nil
}
