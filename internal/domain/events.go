package domain

import "time"

type KeyEventType string

const (
	KeyEventGenerated KeyEventType = "generated"
	KeyEventImported  KeyEventType = "imported"
	KeyEventRefresh   KeyEventType = "refresh"
)

// KeysChangedEvent - событие, после которого список нужно перерисовать
type KeysChangedEvent struct {
	Type      KeyEventType
	Key       string // пусто для import/refresh
	Timestamp time.Time
}
