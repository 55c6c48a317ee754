package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/romanzzaa/mod-auth/internal/app"
	"github.com/romanzzaa/mod-auth/internal/config"
	"github.com/romanzzaa/mod-auth/internal/usecase"
)

// App - зависимости команд. Service собирается из конфига, если не передан заранее.
type App struct {
	Out     io.Writer
	Err     io.Writer
	Logger  *slog.Logger
	Service *usecase.KeyService

	// CopyToClipboard по умолчанию clipboard.WriteAll
	CopyToClipboard func(string) error

	storeDriver string
	verbose     bool
	closeStore  func() error
}

func NewApp() *App {
	return &App{
		Out:             os.Stdout,
		Err:             os.Stderr,
		CopyToClipboard: clipboard.WriteAll,
	}
}

// NewLogger - человекочитаемый вывод в stderr через charmbracelet/log
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "keygen",
	})
	return slog.New(handler)
}

func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "keygen",
		Short:         "Generate and publish license keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeStore != nil {
				return a.closeStore()
			}
			return nil
		},
	}

	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.PersistentFlags().StringVar(&a.storeDriver, "store", "",
		fmt.Sprintf("storage driver (%s|%s|%s), overrides STORAGE_DRIVER", config.StorageFile, config.StorageMemory, config.StoragePostgres))
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		newGenerateCommand(a),
		newListCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newRemoteCommand(a),
		newDurationsCommand(a),
	)
	return root
}

func (a *App) init(ctx context.Context) error {
	if a.Logger == nil {
		a.Logger = NewLogger(a.Err, a.verbose)
	}
	if a.Service != nil {
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if a.storeDriver != "" {
		cfg.Storage.Driver = a.storeDriver
	}

	svc, closeStore, err := app.NewKeyService(ctx, cfg, a.Logger)
	if err != nil {
		return err
	}
	a.Service = svc
	a.closeStore = closeStore
	return nil
}
