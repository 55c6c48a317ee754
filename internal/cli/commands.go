package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/romanzzaa/mod-auth/internal/domain"
	"github.com/romanzzaa/mod-auth/internal/render"
)

func newGenerateCommand(a *App) *cobra.Command {
	var (
		minutes int
		copyKey bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.Service.Generate(cmd.Context(), minutes)
			if err != nil {
				return err
			}

			view := domain.NewKeyView(rec, a.Service.Now(), a.Service.Location())
			fmt.Fprintln(a.Out, rec.Key)
			fmt.Fprintf(a.Out, "Срок: %s\nСоздан: %s\n", view.DurationText, view.CreatedText)

			if copyKey {
				if err := a.CopyToClipboard(rec.Key); err != nil {
					a.Logger.Warn("Clipboard unavailable", slog.String("error", err.Error()))
					return nil
				}
				fmt.Fprintln(a.Out, "Скопировано!")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&minutes, "duration", "d", domain.Duration3Minutes, "key lifetime in minutes (3, 10080, 43200, 129600 or any positive value)")
	cmd.Flags().BoolVarP(&copyKey, "copy", "c", false, "copy the key to the clipboard")
	return cmd
}

func newListCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "refresh"},
		Short:   "List stored keys with their status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := a.Service.Views(cmd.Context())
			if err != nil {
				return err
			}
			render.Table(a.Out, views)
			return nil
		},
	}
}

func newExportCommand(a *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write keys.json for upload to GitHub Pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "-" {
				return a.Service.Export(cmd.Context(), a.Out)
			}

			var buf bytes.Buffer
			if err := a.Service.Export(cmd.Context(), &buf); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(a.Out, "Файл %s сохранен! Загрузите его в ваш GitHub репозиторий.\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "keys.json", "output file, - for stdout")
	return cmd
}

func newImportCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace stored keys with the contents of a keys.json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := a.Service.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Импортировано ключей: %d\n", n)
			return nil
		},
	}
}

func newRemoteCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remote",
		Short: "Show the published key list (read only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := a.Service.FetchRemote(cmd.Context())

			now := a.Service.Now()
			views := make([]domain.KeyView, 0, len(data.Keys))
			for _, k := range data.Keys {
				views = append(views, domain.NewKeyView(k, now, a.Service.Location()))
			}
			render.Table(a.Out, views)
			return nil
		},
	}
}

func newDurationsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "durations",
		Short: "List preset key lifetimes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(a.Out)
			table.SetHeader([]string{"Минуты", "Срок"})
			table.SetBorder(false)
			for _, d := range domain.Durations {
				table.Append([]string{strconv.Itoa(d), domain.DurationText(d)})
			}
			table.Render()
			return nil
		},
	}
}
