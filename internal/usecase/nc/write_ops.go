package nc

import (
	"context"
	"fmt"
	"strings"

	domainnc "nctrack/internal/domain/nc"
	"nctrack/internal/errs"
	"nctrack/internal/ports"
)

// CreateNCInput carries a new record. Required fields are plain strings;
// everything else is optional. The same shape feeds the HTTP handler,
// the seed loader and the CSV importer.
type CreateNCInput struct {
	Type                    string  `json:"type" yaml:"type"`
	Title                   string  `json:"title" yaml:"title"`
	Description             string  `json:"description" yaml:"description"`
	DateReported            string  `json:"date_reported" yaml:"date_reported"`
	Status                  string  `json:"status" yaml:"status"`
	Severity                string  `json:"severity" yaml:"severity"`
	Category                *string `json:"category" yaml:"category"`
	Department              *string `json:"department" yaml:"department"`
	NCSource                *string `json:"nc_source" yaml:"nc_source"`
	StandardReference       *string `json:"standard_reference" yaml:"standard_reference"`
	ClauseReference         *string `json:"clause_reference" yaml:"clause_reference"`
	RootCause               *string `json:"root_cause" yaml:"root_cause"`
	RootCauseCategory       *string `json:"root_cause_category" yaml:"root_cause_category"`
	CorrectiveActions       *string `json:"corrective_actions" yaml:"corrective_actions"`
	PreventiveActions       *string `json:"preventive_actions" yaml:"preventive_actions"`
	ResponsiblePerson       *string `json:"responsible_person" yaml:"responsible_person"`
	ResponsiblePersonEmail  *string `json:"responsible_person_email" yaml:"responsible_person_email"`
	DueDate                 *string `json:"due_date" yaml:"due_date"`
	ClosureDate             *string `json:"closure_date" yaml:"closure_date"`
	EffectivenessCheckDate  *string `json:"effectiveness_check_date" yaml:"effectiveness_check_date"`
	EffectivenessScore      *int    `json:"effectiveness_score" yaml:"effectiveness_score"`
	EffectivenessNotes      *string `json:"effectiveness_notes" yaml:"effectiveness_notes"`
	NeedsEffectivenessCheck *bool   `json:"needs_effectiveness_check" yaml:"needs_effectiveness_check"`
	Notes                   *string `json:"notes" yaml:"notes"`
}

// UpdateNCInput is a partial update: nil means "leave unchanged".
// A JSON null decodes to nil too, so null and absent are equivalent.
type UpdateNCInput struct {
	Type                    *string `json:"type"`
	Title                   *string `json:"title"`
	Description             *string `json:"description"`
	DateReported            *string `json:"date_reported"`
	Status                  *string `json:"status"`
	Severity                *string `json:"severity"`
	Category                *string `json:"category"`
	Department              *string `json:"department"`
	NCSource                *string `json:"nc_source"`
	StandardReference       *string `json:"standard_reference"`
	ClauseReference         *string `json:"clause_reference"`
	RootCause               *string `json:"root_cause"`
	RootCauseCategory       *string `json:"root_cause_category"`
	CorrectiveActions       *string `json:"corrective_actions"`
	PreventiveActions       *string `json:"preventive_actions"`
	ResponsiblePerson       *string `json:"responsible_person"`
	ResponsiblePersonEmail  *string `json:"responsible_person_email"`
	DueDate                 *string `json:"due_date"`
	ClosureDate             *string `json:"closure_date"`
	EffectivenessCheckDate  *string `json:"effectiveness_check_date"`
	EffectivenessScore      *int    `json:"effectiveness_score"`
	EffectivenessNotes      *string `json:"effectiveness_notes"`
	NeedsEffectivenessCheck *bool   `json:"needs_effectiveness_check"`
	Notes                   *string `json:"notes"`
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domainnc.ErrValidation, fmt.Sprintf(format, args...))
}

func validateCreate(input CreateNCInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return validationError("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return validationError("description is required")
	}
	if strings.TrimSpace(input.DateReported) == "" {
		return validationError("date_reported is required")
	}
	if _, err := domainnc.ParseDay(input.DateReported); err != nil {
		return validationError("date_reported %q is not an ISO date", input.DateReported)
	}
	if input.Status == "" {
		return validationError("status is required")
	}
	if !domainnc.Status(input.Status).Valid() {
		return validationError("unknown status %q", input.Status)
	}
	if input.Severity == "" {
		return validationError("severity is required")
	}
	if !domainnc.Severity(input.Severity).Valid() {
		return validationError("unknown severity %q", input.Severity)
	}
	if input.EffectivenessScore != nil && (*input.EffectivenessScore < 1 || *input.EffectivenessScore > 5) {
		return validationError("effectiveness_score must be between 1 and 5")
	}
	return nil
}

// CreateNC validates, applies the effectiveness-check derivation and
// persists a new record. An assignment notification fires when both a
// responsible person and email are set.
func (s *Service) CreateNC(ctx context.Context, input CreateNCInput) (ports.NonConformance, error) {
	if err := validateCreate(input); err != nil {
		return ports.NonConformance{}, err
	}

	now := s.nowStamp()
	record := ports.NonConformance{
		Type:                   strings.TrimSpace(input.Type),
		Title:                  strings.TrimSpace(input.Title),
		Description:            input.Description,
		DateReported:           input.DateReported,
		Status:                 input.Status,
		Severity:               input.Severity,
		Category:               input.Category,
		Department:             input.Department,
		NCSource:               input.NCSource,
		StandardReference:      input.StandardReference,
		ClauseReference:        input.ClauseReference,
		RootCause:              input.RootCause,
		RootCauseCategory:      input.RootCauseCategory,
		CorrectiveActions:      input.CorrectiveActions,
		PreventiveActions:      input.PreventiveActions,
		ResponsiblePerson:      input.ResponsiblePerson,
		ResponsiblePersonEmail: input.ResponsiblePersonEmail,
		DueDate:                input.DueDate,
		ClosureDate:            input.ClosureDate,
		EffectivenessCheckDate: input.EffectivenessCheckDate,
		EffectivenessScore:     input.EffectivenessScore,
		EffectivenessNotes:     input.EffectivenessNotes,
		Notes:                  input.Notes,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if record.Type == "" {
		record.Type = domainnc.DefaultType
	}
	if input.NeedsEffectivenessCheck != nil {
		record.NeedsEffectivenessCheck = *input.NeedsEffectivenessCheck
	}

	if err := deriveEffectivenessCheck(&record); err != nil {
		return ports.NonConformance{}, err
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return ports.NonConformance{}, errs.Wrap(err, "create non-conformance")
	}

	s.invalidateReports(ctx)

	if hasAssignee(created) {
		s.notify(ctx, "nc_assigned", created.ID, func(ctx context.Context) error {
			return s.notifier.NCAssigned(ctx, created)
		})
	}

	return created, nil
}

// UpdateNC merges the supplied fields over the stored record, re-applies
// the derivation rule on a close, and refreshes updated_at. Notification
// rules: a newly supplied, changed email triggers an assignment message;
// a status change triggers a status message when an email is on file.
func (s *Service) UpdateNC(ctx context.Context, id int64, input UpdateNCInput) (ports.NonConformance, error) {
	prior, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ports.NonConformance{}, errs.Wrap(err, "load non-conformance")
	}
	if !found {
		return ports.NonConformance{}, domainnc.ErrNotFound
	}

	merged := prior
	if err := applyUpdate(&merged, input); err != nil {
		return ports.NonConformance{}, err
	}

	// Manual check dates always win; the rule only fills a gap.
	if merged.Status == string(domainnc.StatusClosed) && merged.EffectivenessCheckDate == nil {
		if err := deriveEffectivenessCheck(&merged); err != nil {
			return ports.NonConformance{}, err
		}
	}

	merged.ID = prior.ID
	merged.CreatedAt = prior.CreatedAt
	merged.UpdatedAt = s.nowStamp()

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		return ports.NonConformance{}, errs.Wrap(err, "update non-conformance")
	}

	s.invalidateReports(ctx)

	assignmentChanged := input.ResponsiblePersonEmail != nil &&
		(prior.ResponsiblePersonEmail == nil || *input.ResponsiblePersonEmail != *prior.ResponsiblePersonEmail)
	if assignmentChanged && hasAssignee(updated) {
		s.notify(ctx, "nc_assigned", updated.ID, func(ctx context.Context) error {
			return s.notifier.NCAssigned(ctx, updated)
		})
	}

	statusChanged := input.Status != nil && *input.Status != prior.Status
	if statusChanged && updated.ResponsiblePersonEmail != nil {
		oldStatus := prior.Status
		s.notify(ctx, "nc_status_changed", updated.ID, func(ctx context.Context) error {
			return s.notifier.NCStatusChanged(ctx, updated, oldStatus)
		})
	}

	return updated, nil
}

// DeleteNC removes a record and its comment trail in one transaction.
// Deleting a missing id is not an error; it reports deleted=false.
func (s *Service) DeleteNC(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.DeleteComments(ctx, id); err != nil {
			return err
		}
		var err error
		deleted, err = s.repo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, errs.Wrap(err, "delete non-conformance")
	}

	if deleted {
		s.invalidateReports(ctx)
	}
	return deleted, nil
}

func applyUpdate(record *ports.NonConformance, input UpdateNCInput) error {
	if input.Type != nil {
		record.Type = *input.Type
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return validationError("title cannot be empty")
		}
		record.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return validationError("description cannot be empty")
		}
		record.Description = *input.Description
	}
	if input.DateReported != nil {
		if _, err := domainnc.ParseDay(*input.DateReported); err != nil {
			return validationError("date_reported %q is not an ISO date", *input.DateReported)
		}
		record.DateReported = *input.DateReported
	}
	if input.Status != nil {
		if !domainnc.Status(*input.Status).Valid() {
			return validationError("unknown status %q", *input.Status)
		}
		record.Status = *input.Status
	}
	if input.Severity != nil {
		if !domainnc.Severity(*input.Severity).Valid() {
			return validationError("unknown severity %q", *input.Severity)
		}
		record.Severity = *input.Severity
	}
	if input.EffectivenessScore != nil {
		if *input.EffectivenessScore != 0 && (*input.EffectivenessScore < 1 || *input.EffectivenessScore > 5) {
			return validationError("effectiveness_score must be between 1 and 5")
		}
		record.EffectivenessScore = input.EffectivenessScore
	}
	if input.Category != nil {
		record.Category = input.Category
	}
	if input.Department != nil {
		record.Department = input.Department
	}
	if input.NCSource != nil {
		record.NCSource = input.NCSource
	}
	if input.StandardReference != nil {
		record.StandardReference = input.StandardReference
	}
	if input.ClauseReference != nil {
		record.ClauseReference = input.ClauseReference
	}
	if input.RootCause != nil {
		record.RootCause = input.RootCause
	}
	if input.RootCauseCategory != nil {
		record.RootCauseCategory = input.RootCauseCategory
	}
	if input.CorrectiveActions != nil {
		record.CorrectiveActions = input.CorrectiveActions
	}
	if input.PreventiveActions != nil {
		record.PreventiveActions = input.PreventiveActions
	}
	if input.ResponsiblePerson != nil {
		record.ResponsiblePerson = input.ResponsiblePerson
	}
	if input.ResponsiblePersonEmail != nil {
		record.ResponsiblePersonEmail = input.ResponsiblePersonEmail
	}
	if input.DueDate != nil {
		record.DueDate = input.DueDate
	}
	if input.ClosureDate != nil {
		record.ClosureDate = input.ClosureDate
	}
	if input.EffectivenessCheckDate != nil {
		record.EffectivenessCheckDate = input.EffectivenessCheckDate
	}
	if input.EffectivenessNotes != nil {
		record.EffectivenessNotes = input.EffectivenessNotes
	}
	if input.NeedsEffectivenessCheck != nil {
		record.NeedsEffectivenessCheck = *input.NeedsEffectivenessCheck
	}
	if input.Notes != nil {
		record.Notes = input.Notes
	}
	return nil
}

// deriveEffectivenessCheck fills in the review date on a close event:
// closure date plus four calendar months, only when no check date exists.
func deriveEffectivenessCheck(record *ports.NonConformance) error {
	if record.Status != string(domainnc.StatusClosed) {
		return nil
	}
	if record.ClosureDate == nil || *record.ClosureDate == "" {
		return nil
	}
	if record.EffectivenessCheckDate != nil && *record.EffectivenessCheckDate != "" {
		return nil
	}

	checkDate, err := domainnc.EffectivenessCheckDate(*record.ClosureDate)
	if err != nil {
		return validationError("closure_date %q is not an ISO date", *record.ClosureDate)
	}
	record.EffectivenessCheckDate = &checkDate
	record.NeedsEffectivenessCheck = true
	return nil
}

func hasAssignee(record ports.NonConformance) bool {
	return record.ResponsiblePerson != nil && *record.ResponsiblePerson != "" &&
		record.ResponsiblePersonEmail != nil && *record.ResponsiblePersonEmail != ""
}
