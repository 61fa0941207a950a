package nc

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"nctrack/internal/bootstrap/logging"
	domainnc "nctrack/internal/domain/nc"
	"nctrack/internal/errs"
	"nctrack/internal/ports"
)

// csvColumns is the export column order. Import matches by header name,
// so column order in incoming files is free.
var csvColumns = []string{
	"id", "type", "title", "description", "date_reported", "status", "severity",
	"category", "department", "nc_source", "standard_reference", "clause_reference",
	"root_cause", "root_cause_category", "corrective_actions", "preventive_actions",
	"responsible_person", "responsible_person_email", "due_date", "closure_date",
	"effectiveness_check_date", "effectiveness_score", "effectiveness_notes",
	"needs_effectiveness_check", "notes", "created_at", "updated_at",
}

// ExportCSV streams every record as CSV, newest first like the listing.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	records, err := s.repo.List(ctx, ports.NCFilter{})
	if err != nil {
		return 0, errs.Wrap(err, "list non-conformances")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return 0, errs.Wrap(err, "write csv header")
	}
	for _, record := range records {
		if err := cw.Write(csvRow(record)); err != nil {
			return 0, errs.Wrapf(err, "write csv row for nc %d", record.ID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, errs.Wrap(err, "flush csv")
	}
	return len(records), nil
}

type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportCSV bulk-creates records from a CSV file with a header row.
// Rows failing validation are skipped and logged; id and audit columns
// in the file are ignored, the store assigns fresh ones.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportResult{}, errs.Wrap(err, "read csv header")
	}
	index := map[string]int{}
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["title"]; !ok {
		return ImportResult{}, validationError("csv header missing title column")
	}

	var result ImportResult
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, errs.Wrapf(err, "read csv line %d", line+1)
		}
		line++

		input := csvInput(index, row)
		if _, err := s.CreateNC(ctx, input); err != nil {
			if errors.Is(err, domainnc.ErrValidation) {
				result.Skipped++
				logging.Warn(ctx, "csv row skipped",
					slog.Int("line", line), slog.Any("err", errs.Loggable(err)))
				continue
			}
			return result, errs.Wrapf(err, "import csv line %d", line)
		}
		result.Imported++
	}
	return result, nil
}

func csvRow(record ports.NonConformance) []string {
	needsCheck := "0"
	if record.NeedsEffectivenessCheck {
		needsCheck = "1"
	}
	return []string{
		strconv.FormatInt(record.ID, 10),
		record.Type,
		record.Title,
		record.Description,
		record.DateReported,
		record.Status,
		record.Severity,
		deref(record.Category),
		deref(record.Department),
		deref(record.NCSource),
		deref(record.StandardReference),
		deref(record.ClauseReference),
		deref(record.RootCause),
		deref(record.RootCauseCategory),
		deref(record.CorrectiveActions),
		deref(record.PreventiveActions),
		deref(record.ResponsiblePerson),
		deref(record.ResponsiblePersonEmail),
		deref(record.DueDate),
		deref(record.ClosureDate),
		deref(record.EffectivenessCheckDate),
		derefInt(record.EffectivenessScore),
		deref(record.EffectivenessNotes),
		needsCheck,
		deref(record.Notes),
		record.CreatedAt,
		record.UpdatedAt,
	}
}

func csvInput(index map[string]int, row []string) CreateNCInput {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	optional := func(name string) *string {
		v := cell(name)
		if v == "" {
			return nil
		}
		return &v
	}

	input := CreateNCInput{
		Type:                   cell("type"),
		Title:                  cell("title"),
		Description:            cell("description"),
		DateReported:           cell("date_reported"),
		Status:                 cell("status"),
		Severity:               cell("severity"),
		Category:               optional("category"),
		Department:             optional("department"),
		NCSource:               optional("nc_source"),
		StandardReference:      optional("standard_reference"),
		ClauseReference:        optional("clause_reference"),
		RootCause:              optional("root_cause"),
		RootCauseCategory:      optional("root_cause_category"),
		CorrectiveActions:      optional("corrective_actions"),
		PreventiveActions:      optional("preventive_actions"),
		ResponsiblePerson:      optional("responsible_person"),
		ResponsiblePersonEmail: optional("responsible_person_email"),
		DueDate:                optional("due_date"),
		ClosureDate:            optional("closure_date"),
		EffectivenessCheckDate: optional("effectiveness_check_date"),
		EffectivenessNotes:     optional("effectiveness_notes"),
		Notes:                  optional("notes"),
	}
	if raw := cell("effectiveness_score"); raw != "" {
		if score, err := strconv.Atoi(raw); err == nil {
			input.EffectivenessScore = &score
		}
	}
	return input
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
