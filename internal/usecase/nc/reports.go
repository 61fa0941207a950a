package nc

import (
	"context"
	"encoding/json"
	"log/slog"

	"nctrack/internal/bootstrap/logging"
	"nctrack/internal/errs"
	"nctrack/internal/ports"
)

// Stats serves the dashboard summary, through the report cache when one
// is configured. Cache trouble degrades to a direct query, never an error.
func (s *Service) Stats(ctx context.Context) (ports.Stats, error) {
	var cached ports.Stats
	if s.readCached(ctx, statsCacheKey, &cached) {
		return cached, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return ports.Stats{}, errs.Wrap(err, "compute stats")
	}

	s.writeCached(ctx, statsCacheKey, stats)
	return stats, nil
}

// Analytics serves the reporting bundle with the same caching policy.
func (s *Service) Analytics(ctx context.Context) (ports.Analytics, error) {
	var cached ports.Analytics
	if s.readCached(ctx, analyticsCacheKey, &cached) {
		return cached, nil
	}

	bundle, err := s.repo.Analytics(ctx, s.today())
	if err != nil {
		return ports.Analytics{}, errs.Wrap(err, "compute analytics")
	}

	s.writeCached(ctx, analyticsCacheKey, bundle)
	return bundle, nil
}

func (s *Service) readCached(ctx context.Context, key string, out any) bool {
	if s.cacheTTL <= 0 {
		return false
	}

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "report cache read failed",
			slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logging.Warn(ctx, "report cache payload corrupt, dropping",
			slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		_ = s.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (s *Service) writeCached(ctx context.Context, key string, report any) {
	if s.cacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		logging.Warn(ctx, "report cache encode failed",
			slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		logging.Warn(ctx, "report cache write failed",
			slog.String("key", key), slog.Any("err", errs.Loggable(err)))
	}
}
