package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/romanzzaa/mod-auth/internal/domain"
	"github.com/romanzzaa/mod-auth/internal/render"

	"github.com/stretchr/testify/assert"
)

func views() []domain.KeyView {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	hwid := "0123456789ABCDEF0123"

	active, _ := domain.NewKeyRecord("AAAA-BBBB-CCCC-DDDD", now, domain.Duration7Days)
	expired, _ := domain.NewKeyRecord("EEEE-FFFF-GGGG-HHHH", now.Add(-time.Hour), domain.Duration3Minutes)
	expired.HWID = &hwid

	return []domain.KeyView{
		domain.NewKeyView(active, now, time.UTC),
		domain.NewKeyView(expired, now, time.UTC),
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "Нет активных ключей", render.Text(nil))

	out := render.Text(views())
	assert.Contains(t, out, `*Ключи \(2\):*`)
	assert.Contains(t, out, "🟢 `AAAA\\-BBBB\\-CCCC\\-DDDD` Активен")
	assert.Contains(t, out, "🔴 `EEEE\\-FFFF\\-GGGG\\-HHHH` Истек")
	assert.Contains(t, out, "HWID: `0123456789ABCDEF\\.\\.\\.`")
	assert.Contains(t, out, `├ Создан: 16\.10\.2026, 12:00:00`)
	assert.Contains(t, out, "└ Срок: 7 дней")
	assert.Contains(t, out, "└ Срок: 3 минуты")
	assert.NotContains(t, out, "Активирован")
}

func TestTextEscapesImportedValues(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	hwid := "a`b_c*d\\e"
	rec, _ := domain.NewKeyRecord("KEY_`1`", now, domain.Duration7Days)
	rec.HWID = &hwid

	out := render.Text([]domain.KeyView{domain.NewKeyView(rec, now, time.UTC)})
	assert.Contains(t, out, "`KEY\\_\\`1\\``")
	assert.Contains(t, out, "HWID: `a\\`b\\_c\\*d\\\\e\\.\\.\\.`")
}

func TestGenerated(t *testing.T) {
	v := views()[0]
	rec := domain.KeyRecord{Key: v.Key}
	out := render.Generated(rec, v)
	assert.Contains(t, out, "`AAAA\\-BBBB\\-CCCC\\-DDDD`")
	assert.Contains(t, out, "Срок: 7 дней")
	assert.Contains(t, out, `Создан: 16\.10\.2026, 12:00:00`)
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	render.Table(&buf, nil)
	assert.Equal(t, "Нет активных ключей\n", buf.String())

	buf.Reset()
	render.Table(&buf, views())
	out := buf.String()
	assert.Contains(t, out, "Ключ")
	assert.Contains(t, out, "AAAA-BBBB-CCCC-DDDD")
	assert.Contains(t, out, "Истек")
	assert.Contains(t, out, "7 дней")
}
