// Package nc implements the record lifecycle usecases: create/update/delete
// with effectiveness-check derivation and fire-and-forget notifications,
// the threaded comment trail, reporting, and CSV import/export.
package nc

import (
	"context"
	"log/slog"
	"time"

	"nctrack/internal/bootstrap/logging"
	"nctrack/internal/errs"
	"nctrack/internal/ports"
)

const (
	statsCacheKey     = "reports:stats"
	analyticsCacheKey = "reports:analytics"
)

type Options struct {
	// ReportCacheTTL bounds how stale a cached stats/analytics payload
	// may be. Zero disables report caching.
	ReportCacheTTL time.Duration

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	repo     ports.NCRepository
	uow      ports.UnitOfWork
	cache    ports.Cache
	notifier ports.Notifier
	now      func() time.Time
	cacheTTL time.Duration

	// dispatch runs a notification send. The default detaches it in a
	// goroutine; tests swap in an inline runner.
	dispatch func(fn func())
}

func NewService(repo ports.NCRepository, uow ports.UnitOfWork, cache ports.Cache, notifier ports.Notifier, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     repo,
		uow:      uow,
		cache:    cache,
		notifier: notifier,
		now:      now,
		cacheTTL: opts.ReportCacheTTL,
		dispatch: func(fn func()) { go fn() },
	}
}

func (s *Service) nowStamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// notify runs a best-effort send without blocking the caller. Errors are
// logged and discarded; the triggering mutation already succeeded.
func (s *Service) notify(ctx context.Context, event string, recordID int64, send func(context.Context) error) {
	ctx = logging.WithAttrs(context.WithoutCancel(ctx),
		slog.String("event", event),
		slog.Int64("nc_id", recordID),
	)
	s.dispatch(func() {
		if err := send(ctx); err != nil {
			logging.Warn(ctx, "notification send failed", slog.Any("err", errs.Loggable(err)))
			return
		}
		logging.Info(ctx, "notification dispatched")
	})
}

// invalidateReports drops cached report payloads after any write.
// Cache failures are logged, never surfaced.
func (s *Service) invalidateReports(ctx context.Context) {
	for _, key := range []string{statsCacheKey, analyticsCacheKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			logging.Warn(ctx, "report cache invalidation failed",
				slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		}
	}
}
