package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nctrack/internal/bootstrap"
	"nctrack/internal/bootstrap/logging"
	"nctrack/internal/errs"
	ncusecase "nctrack/internal/usecase/nc"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all non-conformances as CSV",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ncusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		out, _ := cmd.Flags().GetString("out")
		w := cmd.OutOrStdout()
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return errs.Wrapf(err, "create export file %q", out)
			}
			defer f.Close()
			w = f
		}

		exported, err := svc.ExportCSV(ctx, w)
		if err != nil {
			return errs.Wrap(err, "export csv")
		}

		if out != "" {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "exported %d non-conformances to %s\n", exported, out); err != nil {
				return errs.Wrap(err, "write export output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", "", "Output file (default stdout)")
}
