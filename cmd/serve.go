package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nctrack/internal/bootstrap"
	"nctrack/internal/bootstrap/logging"
	"nctrack/internal/errs"
	"nctrack/internal/transport/httpapi"
	ncusecase "nctrack/internal/usecase/nc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *ncusecase.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		// Schema is migrated on boot so a fresh deployment can serve
		// without a separate init-db step.
		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := httpapi.NewServer(app.Config.Server, svc)
		if err := server.Run(runCtx); err != nil {
			return errs.Wrap(err, "run http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
