package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/romanzzaa/mod-auth/internal/cli"
	"github.com/romanzzaa/mod-auth/internal/domain"
	"github.com/romanzzaa/mod-auth/internal/infrastructure/storage"
	"github.com/romanzzaa/mod-auth/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newApp(t *testing.T) (*cli.App, *bytes.Buffer, *[]string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := usecase.NewKeyService(storage.NewMemoryStore("mod_keys"), nil, logger,
		usecase.WithClock(fixedClock{t: time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)}),
		usecase.WithLocation(time.UTC))

	var out bytes.Buffer
	copied := &[]string{}
	a := &cli.App{
		Out:     &out,
		Err:     io.Discard,
		Logger:  logger,
		Service: svc,
		CopyToClipboard: func(s string) error {
			*copied = append(*copied, s)
			return nil
		},
	}
	return a, &out, copied
}

func run(a *cli.App, args ...string) error {
	root := cli.NewRootCommand(a)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestGenerateCommand(t *testing.T) {
	a, out, copied := newApp(t)

	require.NoError(t, run(a, "generate", "--duration", "43200", "--copy"))
	lines := strings.Split(out.String(), "\n")
	assert.Regexp(t, `^[A-Z0-9]{4}(-[A-Z0-9]{4}){3}$`, lines[0])
	assert.Equal(t, "Срок: 30 дней", lines[1])
	assert.Equal(t, "Создан: 16.10.2026, 12:00:00", lines[2])
	assert.Equal(t, "Скопировано!", lines[3])
	assert.Equal(t, []string{lines[0]}, *copied)

	err := run(a, "generate", "-d", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestGenerateClipboardFailure(t *testing.T) {
	a, out, _ := newApp(t)
	a.CopyToClipboard = func(string) error { return errors.New("no display") }

	require.NoError(t, run(a, "generate", "-c"))
	assert.NotContains(t, out.String(), "Скопировано!")
}

func TestListCommand(t *testing.T) {
	a, out, _ := newApp(t)

	require.NoError(t, run(a, "list"))
	assert.Equal(t, "Нет активных ключей\n", out.String())

	require.NoError(t, run(a, "generate", "-d", "3"))
	out.Reset()
	require.NoError(t, run(a, "ls"))
	assert.Contains(t, out.String(), "Активен")
	assert.Contains(t, out.String(), "3 минуты")
}

func TestExportImportCommands(t *testing.T) {
	a, out, _ := newApp(t)
	require.NoError(t, run(a, "generate", "-d", "10080"))
	require.NoError(t, run(a, "generate", "-d", "129600"))

	path := filepath.Join(t.TempDir(), "keys.json")
	out.Reset()
	require.NoError(t, run(a, "export", "-o", path))
	assert.Contains(t, out.String(), "keys.json")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"keys\": [")

	out.Reset()
	require.NoError(t, run(a, "export", "-o", "-"))
	assert.Equal(t, string(raw), out.String())

	before, err := a.Service.List(context.Background())
	require.NoError(t, err)

	b, out2, _ := newApp(t)
	require.NoError(t, run(b, "import", path))
	assert.Equal(t, "Импортировано ключей: 2\n", out2.String())

	after, err := b.Service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	assert.Error(t, run(b, "import", filepath.Join(t.TempDir(), "missing.json")))
}

func TestRemoteAndDurationsCommands(t *testing.T) {
	a, out, _ := newApp(t)

	require.NoError(t, run(a, "remote"))
	assert.Equal(t, "Нет активных ключей\n", out.String())

	out.Reset()
	require.NoError(t, run(a, "durations"))
	assert.Contains(t, out.String(), "129600")
	assert.Contains(t, out.String(), "90 дней")
}
