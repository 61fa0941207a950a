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

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-create non-conformances from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *ncusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		path := cmd.Flags().Arg(0)
		f, err := os.Open(path)
		if err != nil {
			return errs.Wrapf(err, "open import file %q", path)
		}
		defer f.Close()

		result, err := svc.ImportCSV(ctx, f)
		if err != nil {
			return errs.Wrap(err, "import csv")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "imported %d non-conformances (%d skipped) from %s\n",
			result.Imported, result.Skipped, path); err != nil {
			return errs.Wrap(err, "write import output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(importCmd)
}
