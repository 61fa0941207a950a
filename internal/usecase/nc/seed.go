package nc

import (
	"context"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"nctrack/internal/bootstrap/logging"
	"nctrack/internal/errs"
)

// Seed loads sample records from a yaml file and creates them through
// the normal create path, so derivation and validation both apply.
func (s *Service) Seed(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errs.Wrapf(err, "read seed file %q", path)
	}

	var inputs []CreateNCInput
	if err := yaml.Unmarshal(raw, &inputs); err != nil {
		return 0, errs.Wrapf(err, "parse seed file %q", path)
	}

	created := 0
	for i, input := range inputs {
		record, err := s.CreateNC(ctx, input)
		if err != nil {
			return created, errs.Wrapf(err, "seed record %d (%q)", i+1, input.Title)
		}
		logging.Info(ctx, "seeded non-conformance",
			slog.Int64("id", record.ID), slog.String("title", record.Title))
		created++
	}
	return created, nil
}
