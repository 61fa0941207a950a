package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"nctrack/internal/bootstrap/config"
	"nctrack/internal/bootstrap/database"
	"nctrack/internal/bootstrap/logging"
	cacheinfra "nctrack/internal/infrastructure/cache"
	"nctrack/internal/infrastructure/email"
	sqliterepo "nctrack/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "nctrack/internal/infrastructure/persistence/sqlite/uow"
	"nctrack/internal/ports"
	ncusecase "nctrack/internal/usecase/nc"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewNCRepository,
			fx.As(new(ports.NCRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideNotifier,
			fx.As(new(ports.Notifier)),
		),
	),
	fx.Provide(provideService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideNotifier(cfg config.Config) *email.SMTPNotifier {
	return email.NewSMTPNotifier(cfg.Email)
}

func provideService(cfg config.Config, repo ports.NCRepository, uow ports.UnitOfWork, cache ports.Cache, notifier ports.Notifier) *ncusecase.Service {
	return ncusecase.NewService(repo, uow, cache, notifier, ncusecase.Options{
		ReportCacheTTL: time.Duration(cfg.Reports.CacheTTLSeconds) * time.Second,
	})
}
