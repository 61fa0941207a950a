package nc

import (
	"context"
	"errors"
	"testing"
	"time"

	domainnc "nctrack/internal/domain/nc"
)

func TestCreateNCValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateNCInput)
	}{
		{"missing title", func(in *CreateNCInput) { in.Title = "  " }},
		{"missing description", func(in *CreateNCInput) { in.Description = "" }},
		{"missing date_reported", func(in *CreateNCInput) { in.DateReported = "" }},
		{"bad date_reported", func(in *CreateNCInput) { in.DateReported = "01/05/2024" }},
		{"missing status", func(in *CreateNCInput) { in.Status = "" }},
		{"unknown status", func(in *CreateNCInput) { in.Status = "Reopened" }},
		{"missing severity", func(in *CreateNCInput) { in.Severity = "" }},
		{"unknown severity", func(in *CreateNCInput) { in.Severity = "Blocker" }},
		{"score too low", func(in *CreateNCInput) { in.EffectivenessScore = intPtr(0) }},
		{"score too high", func(in *CreateNCInput) { in.EffectivenessScore = intPtr(6) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := minimalCreate()
			tt.mutate(&input)
			_, err := env.svc.CreateNC(ctx, input)
			if !errors.Is(err, domainnc.ErrValidation) {
				t.Fatalf("CreateNC() error = %v, want ErrValidation", err)
			}
		})
	}

	if len(env.notifier.calls) != 0 {
		t.Errorf("notifier calls = %v, want none for rejected input", env.notifier.calls)
	}
}

func TestCreateNCDefaults(t *testing.T) {
	env := newTestEnv(t)

	record, err := env.svc.CreateNC(context.Background(), minimalCreate())
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	if record.ID == 0 {
		t.Error("id not assigned")
	}
	if record.Type != "NC" {
		t.Errorf("type = %q, want NC", record.Type)
	}
	if record.NeedsEffectivenessCheck {
		t.Error("needs_effectiveness_check = true, want false")
	}
	if record.EffectivenessCheckDate != nil {
		t.Errorf("effectiveness_check_date = %v, want nil", record.EffectivenessCheckDate)
	}
	wantStamp := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	if record.CreatedAt != wantStamp || record.UpdatedAt != wantStamp {
		t.Errorf("timestamps = %q/%q, want %q", record.CreatedAt, record.UpdatedAt, wantStamp)
	}
	if len(env.notifier.calls) != 0 {
		t.Errorf("notifier calls = %v, want none without an assignee", env.notifier.calls)
	}
}

func TestCreateNCDerivesEffectivenessCheck(t *testing.T) {
	env := newTestEnv(t)

	input := minimalCreate()
	input.Status = "Closed"
	input.ClosureDate = strPtr("2024-01-10")

	record, err := env.svc.CreateNC(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	if record.EffectivenessCheckDate == nil || *record.EffectivenessCheckDate != "2024-05-10" {
		t.Fatalf("effectiveness_check_date = %v, want 2024-05-10", record.EffectivenessCheckDate)
	}
	if !record.NeedsEffectivenessCheck {
		t.Error("needs_effectiveness_check = false, want true after derivation")
	}
}

func TestCreateNCManualCheckDateWins(t *testing.T) {
	env := newTestEnv(t)

	input := minimalCreate()
	input.Status = "Closed"
	input.ClosureDate = strPtr("2024-01-10")
	input.EffectivenessCheckDate = strPtr("2024-08-01")

	record, err := env.svc.CreateNC(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	if record.EffectivenessCheckDate == nil || *record.EffectivenessCheckDate != "2024-08-01" {
		t.Fatalf("effectiveness_check_date = %v, want the supplied 2024-08-01", record.EffectivenessCheckDate)
	}
	if record.NeedsEffectivenessCheck {
		t.Error("needs_effectiveness_check = true, want false when no derivation ran")
	}
}

func TestCreateNCClosedWithoutClosureDate(t *testing.T) {
	env := newTestEnv(t)

	input := minimalCreate()
	input.Status = "Closed"

	record, err := env.svc.CreateNC(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	if record.EffectivenessCheckDate != nil {
		t.Errorf("effectiveness_check_date = %v, want nil without a closure date", record.EffectivenessCheckDate)
	}
}

func TestCreateNCBadClosureDate(t *testing.T) {
	env := newTestEnv(t)

	input := minimalCreate()
	input.Status = "Closed"
	input.ClosureDate = strPtr("garbage")

	_, err := env.svc.CreateNC(context.Background(), input)
	if !errors.Is(err, domainnc.ErrValidation) {
		t.Fatalf("CreateNC() error = %v, want ErrValidation", err)
	}
}

func TestCreateNCNotifiesAssignee(t *testing.T) {
	env := newTestEnv(t)

	input := minimalCreate()
	input.ResponsiblePerson = strPtr("Jane Doe")
	input.ResponsiblePersonEmail = strPtr("jane@example.com")

	record, err := env.svc.CreateNC(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	if len(env.notifier.calls) != 1 {
		t.Fatalf("notifier calls = %v, want exactly one", env.notifier.calls)
	}
	call := env.notifier.calls[0]
	if call.event != "nc_assigned" || call.recordID != record.ID {
		t.Fatalf("notifier call = %+v", call)
	}
}

func TestCreateNCNoEmailNoNotification(t *testing.T) {
	env := newTestEnv(t)

	input := minimalCreate()
	input.ResponsiblePerson = strPtr("Jane Doe")

	if _, err := env.svc.CreateNC(context.Background(), input); err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	if len(env.notifier.calls) != 0 {
		t.Fatalf("notifier calls = %v, want none without an email", env.notifier.calls)
	}
}

func TestCreateNCNotifierFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("smtp down")

	input := minimalCreate()
	input.ResponsiblePerson = strPtr("Jane Doe")
	input.ResponsiblePersonEmail = strPtr("jane@example.com")

	record, err := env.svc.CreateNC(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v, want success despite notifier failure", err)
	}
	if _, getErr := env.svc.GetNC(context.Background(), record.ID); getErr != nil {
		t.Fatalf("GetNC() after failed notification error = %v", getErr)
	}
}

func TestUpdateNCMergesFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateNC(ctx, minimalCreate())
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	env.advance(time.Hour)
	updated, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		Severity:  strPtr("High"),
		RootCause: strPtr("Seal material not rated for operating temperature"),
	})
	if err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}

	if updated.Severity != "High" {
		t.Errorf("severity = %q, want High", updated.Severity)
	}
	if updated.RootCause == nil || *updated.RootCause == "" {
		t.Error("root_cause not applied")
	}
	if updated.Title != created.Title {
		t.Errorf("title changed: %q -> %q", created.Title, updated.Title)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Errorf("created_at drifted: %q -> %q", created.CreatedAt, updated.CreatedAt)
	}
	if updated.UpdatedAt == created.UpdatedAt {
		t.Error("updated_at did not change")
	}
}

func TestUpdateNCNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.UpdateNC(context.Background(), 999, UpdateNCInput{Severity: strPtr("High")})
	if !errors.Is(err, domainnc.ErrNotFound) {
		t.Fatalf("UpdateNC() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateNCValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateNC(ctx, minimalCreate())
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	tests := []struct {
		name  string
		input UpdateNCInput
	}{
		{"empty title", UpdateNCInput{Title: strPtr("   ")}},
		{"empty description", UpdateNCInput{Description: strPtr("")}},
		{"bad date", UpdateNCInput{DateReported: strPtr("05-2024")}},
		{"unknown status", UpdateNCInput{Status: strPtr("Parked")}},
		{"unknown severity", UpdateNCInput{Severity: strPtr("Trivial")}},
		{"score out of range", UpdateNCInput{EffectivenessScore: intPtr(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.UpdateNC(ctx, created.ID, tt.input); !errors.Is(err, domainnc.ErrValidation) {
				t.Fatalf("UpdateNC() error = %v, want ErrValidation", err)
			}
		})
	}

	// Rejected updates leave the record untouched.
	got, err := env.svc.GetNC(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetNC() error = %v", err)
	}
	if got.Title != created.Title || got.Severity != created.Severity {
		t.Errorf("record changed after rejected updates: %+v", got)
	}
}

func TestUpdateNCDerivesOnClose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateNC(ctx, minimalCreate())
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	updated, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		Status:      strPtr("Closed"),
		ClosureDate: strPtr("2024-05-20"),
	})
	if err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if updated.EffectivenessCheckDate == nil || *updated.EffectivenessCheckDate != "2024-09-20" {
		t.Fatalf("effectiveness_check_date = %v, want 2024-09-20", updated.EffectivenessCheckDate)
	}
	if !updated.NeedsEffectivenessCheck {
		t.Error("needs_effectiveness_check = false, want true after derivation")
	}
}

func TestUpdateNCManualCheckDatePrecedence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateNC(ctx, minimalCreate())
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	updated, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		Status:                 strPtr("Closed"),
		ClosureDate:            strPtr("2024-05-20"),
		EffectivenessCheckDate: strPtr("2024-12-01"),
	})
	if err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if updated.EffectivenessCheckDate == nil || *updated.EffectivenessCheckDate != "2024-12-01" {
		t.Fatalf("effectiveness_check_date = %v, want the supplied 2024-12-01", updated.EffectivenessCheckDate)
	}
}

func TestUpdateNCDoesNotRederive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := minimalCreate()
	input.Status = "Closed"
	input.ClosureDate = strPtr("2024-01-10")
	created, err := env.svc.CreateNC(ctx, input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	// Moving the closure date on an already-derived record keeps the
	// existing check date.
	updated, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		ClosureDate: strPtr("2024-02-01"),
	})
	if err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if updated.EffectivenessCheckDate == nil || *updated.EffectivenessCheckDate != "2024-05-10" {
		t.Fatalf("effectiveness_check_date = %v, want the original 2024-05-10", updated.EffectivenessCheckDate)
	}
}

func TestUpdateNCAssignmentNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := minimalCreate()
	input.ResponsiblePerson = strPtr("Jane Doe")
	created, err := env.svc.CreateNC(ctx, input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	if len(env.notifier.calls) != 0 {
		t.Fatalf("unexpected notification on create: %v", env.notifier.calls)
	}

	if _, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		ResponsiblePersonEmail: strPtr("jane@example.com"),
	}); err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if len(env.notifier.calls) != 1 || env.notifier.calls[0].event != "nc_assigned" {
		t.Fatalf("notifier calls = %v, want one nc_assigned", env.notifier.calls)
	}

	// Re-sending the same email is not a reassignment.
	if _, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		ResponsiblePersonEmail: strPtr("jane@example.com"),
	}); err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if len(env.notifier.calls) != 1 {
		t.Fatalf("notifier calls = %v, want no duplicate for unchanged email", env.notifier.calls)
	}
}

func TestUpdateNCStatusNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := minimalCreate()
	input.ResponsiblePerson = strPtr("Jane Doe")
	input.ResponsiblePersonEmail = strPtr("jane@example.com")
	created, err := env.svc.CreateNC(ctx, input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	env.notifier.calls = nil

	if _, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		Status: strPtr("Under Investigation"),
	}); err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if len(env.notifier.calls) != 1 {
		t.Fatalf("notifier calls = %v, want one", env.notifier.calls)
	}
	call := env.notifier.calls[0]
	if call.event != "nc_status_changed" || call.oldStatus != "Open" {
		t.Fatalf("notifier call = %+v, want nc_status_changed from Open", call)
	}

	// Supplying the current status is not a transition.
	env.notifier.calls = nil
	if _, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		Status: strPtr("Under Investigation"),
	}); err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if len(env.notifier.calls) != 0 {
		t.Fatalf("notifier calls = %v, want none for unchanged status", env.notifier.calls)
	}
}

func TestUpdateNCStatusNotificationNeedsEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateNC(ctx, minimalCreate())
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	if _, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		Status: strPtr("Closed"),
	}); err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	if len(env.notifier.calls) != 0 {
		t.Fatalf("notifier calls = %v, want none without an email on file", env.notifier.calls)
	}
}

func TestUpdateNCBothNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := minimalCreate()
	input.ResponsiblePerson = strPtr("Jane Doe")
	input.ResponsiblePersonEmail = strPtr("jane@example.com")
	created, err := env.svc.CreateNC(ctx, input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	env.notifier.calls = nil

	if _, err := env.svc.UpdateNC(ctx, created.ID, UpdateNCInput{
		Status:                 strPtr("Action Required"),
		ResponsiblePersonEmail: strPtr("mike@example.com"),
	}); err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}

	if len(env.notifier.calls) != 2 {
		t.Fatalf("notifier calls = %v, want assignment and status change", env.notifier.calls)
	}
	events := map[string]bool{}
	for _, call := range env.notifier.calls {
		events[call.event] = true
	}
	if !events["nc_assigned"] || !events["nc_status_changed"] {
		t.Fatalf("notifier events = %v", events)
	}
}

func TestDeleteNCCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateNC(ctx, minimalCreate())
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := env.svc.AddComment(ctx, created.ID, AddCommentInput{
			AuthorName:  "Inspector",
			CommentText: "note",
		}); err != nil {
			t.Fatalf("AddComment() error = %v", err)
		}
	}

	deleted, err := env.svc.DeleteNC(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteNC() error = %v", err)
	}
	if !deleted {
		t.Fatal("DeleteNC() deleted = false")
	}

	if _, err := env.svc.GetNC(ctx, created.ID); !errors.Is(err, domainnc.ErrNotFound) {
		t.Fatalf("GetNC() after delete error = %v, want ErrNotFound", err)
	}
	count, err := env.repo.CountComments(ctx, created.ID)
	if err != nil {
		t.Fatalf("CountComments() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("comments survived delete: %d", count)
	}

	// Deleting again is a no-op, not an error.
	deleted, err = env.svc.DeleteNC(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteNC() second call error = %v", err)
	}
	if deleted {
		t.Fatal("DeleteNC() second call deleted = true")
	}
}
