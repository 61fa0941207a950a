package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"nctrack/internal/bootstrap"
	"nctrack/internal/bootstrap/logging"
	"nctrack/internal/errs"
	ncusecase "nctrack/internal/usecase/nc"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample non-conformances from a yaml file",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *ncusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		file, _ := cmd.Flags().GetString("file")
		created, err := svc.Seed(ctx, file)
		if err != nil {
			return errs.Wrap(err, "seed database")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "seeded %d non-conformances from %s\n", created, file); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "configs/seed.yaml", "Path to seed yaml file")
}
