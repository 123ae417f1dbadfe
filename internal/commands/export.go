package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sadopc/studytrack/internal/export"
)

func newExportCmd(env Env) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions and analytics to CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			snap, err := env.Store.Snapshot()
			if err != nil {
				return fmt.Errorf("load data: %w", err)
			}
			report, err := env.Engine.Report(snap)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}

			path := out
			if path == "" {
				path = export.DefaultPath(env.ExportDir, f, env.now())
			}
			if err := export.Snapshot(f, snap, report, path); err != nil {
				return err
			}

			env.Log.Info("export written", slog.String("path", path), slog.String("format", string(f)))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(snap.SessionLogs), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: studytrack-export-<date>.<format> in the home directory)")
	return cmd
}
