package nc

import (
	"context"

	domainnc "nctrack/internal/domain/nc"
	"nctrack/internal/errs"
	"nctrack/internal/ports"
)

// GetNC loads one record by id.
func (s *Service) GetNC(ctx context.Context, id int64) (ports.NonConformance, error) {
	record, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ports.NonConformance{}, errs.Wrap(err, "load non-conformance")
	}
	if !found {
		return ports.NonConformance{}, domainnc.ErrNotFound
	}
	return record, nil
}

// ListNCs returns the filtered listing, newest first.
func (s *Service) ListNCs(ctx context.Context, filter ports.NCFilter) ([]ports.NonConformance, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(err, "list non-conformances")
	}
	return items, nil
}

// EffectivenessDue lists records whose follow-up review is due today or
// earlier and has not been scored, most overdue first.
func (s *Service) EffectivenessDue(ctx context.Context) ([]ports.NonConformance, error) {
	items, err := s.repo.EffectivenessDue(ctx, s.today())
	if err != nil {
		return nil, errs.Wrap(err, "list effectiveness due")
	}
	return items, nil
}
