package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mcoot/truthlie/internal/services/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export game data as JSON",
	}

	cmd.AddCommand(newExportDocCmd("full", "Export rounds, sessions, profiles and history",
		func(ctx context.Context) *export.Document { return app.ExportService.Full(ctx) }))
	cmd.AddCommand(newExportDocCmd("history", "Export session history and finished rounds",
		func(ctx context.Context) *export.Document { return app.ExportService.History(ctx) }))
	cmd.AddCommand(newExportDocCmd("stats", "Export round and player counts",
		func(ctx context.Context) *export.Document { return app.ExportService.Stats(ctx) }))
	cmd.AddCommand(newExportDocCmd("drafts", "Export draft rounds",
		func(ctx context.Context) *export.Document { return app.ExportService.Drafts(ctx) }))

	return cmd
}

func newExportDocCmd(use, short string, build func(ctx context.Context) *export.Document) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := build(cmd.Context())
			if dir == "" {
				return app.ExportService.Write(cmd.OutOrStdout(), doc)
			}
			path, err := app.ExportService.Save(afero.NewOsFs(), dir, doc)
			if err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Exported to %s", path))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Write the export into this directory under its default file name")

	return cmd
}
