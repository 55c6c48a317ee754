package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/romanzzaa/mod-auth/internal/domain"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore хранит блоб в <dir>/<key>.json. Бот, веб и CLI могут делить один каталог:
// доступ сериализуется advisory lock'ом на <key>.json.lock.
// Внутри процесса flock делит один fd, поэтому сверху еще mu.
type FileStore struct {
	path string
	mu   sync.RWMutex
	lock *flock.Flock
}

func NewFileStore(dir, key string) (*FileStore, error) {
	if key == "" {
		return nil, errors.New("storage key is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	path := filepath.Join(dir, key+".json")
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (domain.KeysData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return domain.KeysData{}, fmt.Errorf("failed to lock storage: %w", err)
	}
	defer s.lock.Unlock()

	return s.read()
}

func (s *FileStore) Save(ctx context.Context, data domain.KeysData) error {
	return s.Update(ctx, func(d *domain.KeysData) error {
		*d = data
		return nil
	})
}

// Update держит эксклюзивный lock от чтения до rename, чтобы параллельные
// генерации из разных процессов не затирали друг друга
func (s *FileStore) Update(ctx context.Context, fn func(*domain.KeysData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("failed to lock storage: %w", err)
	}
	defer s.lock.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&data); err != nil {
		return err
	}
	return s.write(data)
}

// read и write вызываются только под lock
func (s *FileStore) read() (domain.KeysData, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.KeysData{}.Normalize(), nil
	}
	if err != nil {
		return domain.KeysData{}, fmt.Errorf("failed to read storage: %w", err)
	}

	var data domain.KeysData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.KeysData{}, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return data.Normalize(), nil
}

func (s *FileStore) write(data domain.KeysData) error {
	raw, err := json.Marshal(data.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode keys: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить обрезанный JSON
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}
