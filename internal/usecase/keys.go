package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/romanzzaa/mod-auth/internal/domain"
	"github.com/romanzzaa/mod-auth/internal/keygen"
)

// KeyService - генерация, список, экспорт и импорт ключей поверх одного блоба
type KeyService struct {
	store     domain.KeyStore
	remote    domain.RemoteSource
	generator keygen.KeyGenerator
	clock     domain.Clock
	location  *time.Location
	logger    *slog.Logger

	subsMu sync.Mutex
	subs   map[chan domain.KeysChangedEvent]struct{}
}

type Option func(*KeyService)

func WithClock(clock domain.Clock) Option {
	return func(s *KeyService) { s.clock = clock }
}

func WithGenerator(g keygen.KeyGenerator) Option {
	return func(s *KeyService) { s.generator = g }
}

func WithLocation(loc *time.Location) Option {
	return func(s *KeyService) { s.location = loc }
}

func NewKeyService(store domain.KeyStore, remote domain.RemoteSource, logger *slog.Logger, opts ...Option) *KeyService {
	s := &KeyService{
		store:     store,
		remote:    remote,
		generator: keygen.NewGenerator(),
		clock:     domain.SystemClock{},
		location:  time.Local,
		logger:    logger.With("component", "keys"),
		subs:      make(map[chan domain.KeysChangedEvent]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KeyService) Now() time.Time { return s.clock.Now() }

func (s *KeyService) Location() *time.Location { return s.location }

// Generate создает ключ на minutes минут и дописывает его в конец списка
func (s *KeyService) Generate(ctx context.Context, minutes int) (domain.KeyRecord, error) {
	if minutes <= 0 {
		return domain.KeyRecord{}, fmt.Errorf("%w: %d", domain.ErrInvalidDuration, minutes)
	}

	code, err := s.generator.Generate()
	if err != nil {
		return domain.KeyRecord{}, fmt.Errorf("failed to generate key: %w", err)
	}

	now := s.clock.Now()
	rec, err := domain.NewKeyRecord(code, now, minutes)
	if err != nil {
		return domain.KeyRecord{}, err
	}

	err = s.store.Update(ctx, func(data *domain.KeysData) error {
		data.Keys = append(data.Keys, rec)
		return nil
	})
	if err != nil {
		return domain.KeyRecord{}, fmt.Errorf("failed to store key: %w", err)
	}

	s.logger.Info("Key generated",
		slog.String("key", rec.Key),
		slog.Int("duration", rec.Duration),
		slog.Int64("expires_at", rec.ExpiresAt))

	s.publish(domain.KeysChangedEvent{Type: domain.KeyEventGenerated, Key: rec.Key, Timestamp: now})
	return rec, nil
}

func (s *KeyService) List(ctx context.Context) (domain.KeysData, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		return domain.KeysData{}, fmt.Errorf("failed to load keys: %w", err)
	}
	return data, nil
}

// Views - строки списка со статусом на текущий момент
func (s *KeyService) Views(ctx context.Context) ([]domain.KeyView, error) {
	data, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]domain.KeyView, 0, len(data.Keys))
	for _, k := range data.Keys {
		views = append(views, domain.NewKeyView(k, now, s.location))
	}
	return views, nil
}

// Export пишет содержимое keys.json: как JSON.stringify(data, null, 2), без перевода строки в конце
func (s *KeyService) Export(ctx context.Context, w io.Writer) error {
	data, err := s.List(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data.Normalize()); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if _, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Import заменяет хранимый блоб документом {keys: [...]}. Возвращает число ключей.
func (s *KeyService) Import(ctx context.Context, r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read import: %w", err)
	}

	data, err := decodeKeysDocument(raw)
	if err != nil {
		return 0, err
	}

	err = s.store.Update(ctx, func(stored *domain.KeysData) error {
		*stored = data
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store imported keys: %w", err)
	}

	s.logger.Info("Keys imported", slog.Int("count", len(data.Keys)))
	s.publish(domain.KeysChangedEvent{Type: domain.KeyEventImported, Timestamp: s.clock.Now()})
	return len(data.Keys), nil
}

// FetchRemote - опубликованный список. В локальное хранилище не сливается.
func (s *KeyService) FetchRemote(ctx context.Context) domain.KeysData {
	if s.remote == nil {
		return domain.KeysData{}.Normalize()
	}
	return s.remote.Fetch(ctx)
}

// Refresh просит подписчиков перерисовать список (статусы зависят от времени)
func (s *KeyService) Refresh() {
	s.publish(domain.KeysChangedEvent{Type: domain.KeyEventRefresh, Timestamp: s.clock.Now()})
}

// Subscribe возвращает канал событий изменения списка и функцию отписки
func (s *KeyService) Subscribe() (<-chan domain.KeysChangedEvent, func()) {
	ch := make(chan domain.KeysChangedEvent, 16)

	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	return ch, func() {
		s.subsMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subsMu.Unlock()
	}
}

func (s *KeyService) publish(event domain.KeysChangedEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- event:
		default:
			// подписчик не успевает, он все равно перерисует весь список
		}
	}
}

func decodeKeysDocument(raw []byte) (domain.KeysData, error) {
	var doc struct {
		Keys *[]domain.KeyRecord `json:"keys"`
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return domain.KeysData{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	// После документа допускаются только пробелы
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return domain.KeysData{}, fmt.Errorf("%w: unexpected data after document", domain.ErrInvalidPayload)
	}
	if doc.Keys == nil {
		return domain.KeysData{}, fmt.Errorf("%w: missing keys array", domain.ErrInvalidPayload)
	}
	return domain.KeysData{Keys: *doc.Keys}.Normalize(), nil
}
