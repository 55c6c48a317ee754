package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// --- Enums & Constants ---

type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"
	KeyStatusUsed    KeyStatus = "used"
	KeyStatusExpired KeyStatus = "expired"
)

// Text - подпись статуса в списке
func (s KeyStatus) Text() string {
	switch s {
	case KeyStatusExpired:
		return "Истек"
	case KeyStatusUsed:
		return "Используется"
	default:
		return "Активен"
	}
}

// Class - CSS класс для статуса
func (s KeyStatus) Class() string {
	return "status-" + string(s)
}

// Пресеты срока действия в минутах (в порядке отображения)
const (
	Duration3Minutes = 3
	Duration7Days    = 10080
	Duration30Days   = 43200
	Duration90Days   = 129600
)

var Durations = []int{Duration3Minutes, Duration7Days, Duration30Days, Duration90Days}

const EmptyListText = "Нет активных ключей"

// DurationText - читаемый срок. Только фиксированная таблица, остальное "N минут".
func DurationText(minutes int) string {
	switch minutes {
	case Duration3Minutes:
		return "3 минуты"
	case Duration7Days:
		return "7 дней"
	case Duration30Days:
		return "30 дней"
	case Duration90Days:
		return "90 дней"
	}
	return fmt.Sprintf("%d минут", minutes)
}

// Формат ru-RU: 16.10.2026, 14:05:09
const dateLayout = "02.01.2006, 15:04:05"

// FormatDate форматирует epoch ms в локали ru-RU
func FormatDate(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(dateLayout)
}

const hwidPreviewLen = 16

// HWIDPreview - первые 16 символов HWID и многоточие
func HWIDPreview(hwid string) string {
	if utf8.RuneCountInString(hwid) > hwidPreviewLen {
		hwid = string([]rune(hwid)[:hwidPreviewLen])
	}
	return hwid + "..."
}

// --- Value Objects ---

// KeyView - строка списка ключей, готовая к отображению
type KeyView struct {
	Key          string    `json:"key"`
	Status       KeyStatus `json:"status"`
	StatusText   string    `json:"statusText"`
	StatusClass  string    `json:"statusClass"`
	Expired      bool      `json:"expired"`
	CreatedText  string    `json:"createdText"`
	ExpiresText  string    `json:"expiresText"`
	DurationText string    `json:"durationText"`
	HWID         string    `json:"hwid,omitempty"`
	UsedAtText   string    `json:"usedAtText,omitempty"`
}

// NewKeyView строит строку отображения на момент now
func NewKeyView(k KeyRecord, now time.Time, loc *time.Location) KeyView {
	status := k.Status(now)
	v := KeyView{
		Key:          k.Key,
		Status:       status,
		StatusText:   status.Text(),
		StatusClass:  status.Class(),
		Expired:      status == KeyStatusExpired,
		CreatedText:  FormatDate(k.CreatedAt, loc),
		ExpiresText:  FormatDate(k.ExpiresAt, loc),
		DurationText: DurationText(k.Duration),
	}
	if k.HWID != nil && *k.HWID != "" {
		v.HWID = HWIDPreview(*k.HWID)
	}
	if k.UsedAt != nil && *k.UsedAt != 0 {
		v.UsedAtText = FormatDate(*k.UsedAt, loc)
	}
	return v
}
