package nc

import (
	"context"
	"testing"
	"time"

	"nctrack/internal/ports"
)

// insertDirect bypasses the service so cached reports cannot see the row
// until something invalidates or expires the cache.
func insertDirect(t *testing.T, env *testEnv, title string) {
	t.Helper()

	stamp := env.nowValue.Format(time.RFC3339Nano)
	if _, err := env.repo.Create(context.Background(), ports.NonConformance{
		Type:         "NC",
		Title:        title,
		Description:  "x",
		DateReported: "2024-05-01",
		Status:       "Open",
		Severity:     "Low",
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
	}); err != nil {
		t.Fatalf("direct insert: %v", err)
	}
}

func TestStatsCaching(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.CreateNC(ctx, minimalCreate()); err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	stats, err := env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("total = %d, want 1", stats.Total)
	}

	// A write that sidesteps the service is invisible while cached.
	insertDirect(t, env, "hidden from cache")
	stats, err = env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("total = %d, want cached 1", stats.Total)
	}

	// Service writes invalidate, so the next read is fresh.
	if _, err := env.svc.CreateNC(ctx, minimalCreate()); err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}
	stats, err = env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("total = %d, want 3 after invalidation", stats.Total)
	}
}

func TestAnalyticsThroughService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := minimalCreate()
	input.Status = "Closed"
	input.DateReported = "2024-05-01"
	input.ClosureDate = strPtr("2024-05-11")
	input.DueDate = strPtr("2024-05-15")
	if _, err := env.svc.CreateNC(ctx, input); err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	overdue := minimalCreate()
	overdue.Title = "overdue record"
	overdue.DueDate = strPtr("2024-05-20")
	if _, err := env.svc.CreateNC(ctx, overdue); err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	bundle, err := env.svc.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if bundle.AvgDaysToClose == nil || *bundle.AvgDaysToClose != 10.0 {
		t.Errorf("avgDaysToClose = %v, want 10.0", bundle.AvgDaysToClose)
	}
	if bundle.SLAComplianceRate == nil || *bundle.SLAComplianceRate != 100 {
		t.Errorf("slaComplianceRate = %v, want 100", bundle.SLAComplianceRate)
	}
	// Clock sits at 2024-06-01, so the open record is 12 days overdue.
	if bundle.OverdueCount != 1 || len(bundle.OverdueNCs) != 1 {
		t.Fatalf("overdue = %d/%v, want one", bundle.OverdueCount, bundle.OverdueNCs)
	}
	if bundle.OverdueNCs[0].DaysOverdue != 12 {
		t.Errorf("days_overdue = %d, want 12", bundle.OverdueNCs[0].DaysOverdue)
	}

	// Cached bundle round-trips through JSON unchanged.
	again, err := env.svc.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics() cached error = %v", err)
	}
	if again.AvgDaysToClose == nil || *again.AvgDaysToClose != 10.0 {
		t.Errorf("cached avgDaysToClose = %v, want 10.0", again.AvgDaysToClose)
	}
	if len(again.ClosureDistribution) != 5 {
		t.Errorf("cached closureDistribution len = %d, want 5", len(again.ClosureDistribution))
	}
}

func TestEffectivenessDueThroughService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Closed 2024-01-10, so the derived check date 2024-05-10 is past due
	// at the test clock of 2024-06-01.
	input := minimalCreate()
	input.Status = "Closed"
	input.ClosureDate = strPtr("2024-01-10")
	due, err := env.svc.CreateNC(ctx, input)
	if err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	// Closed recently, check date still in the future.
	future := minimalCreate()
	future.Status = "Closed"
	future.ClosureDate = strPtr("2024-05-30")
	if _, err := env.svc.CreateNC(ctx, future); err != nil {
		t.Fatalf("CreateNC() error = %v", err)
	}

	items, err := env.svc.EffectivenessDue(ctx)
	if err != nil {
		t.Fatalf("EffectivenessDue() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != due.ID {
		t.Fatalf("EffectivenessDue() = %v, want only record %d", items, due.ID)
	}

	// Scoring the review removes it from the due list.
	if _, err := env.svc.UpdateNC(ctx, due.ID, UpdateNCInput{
		EffectivenessScore: intPtr(4),
	}); err != nil {
		t.Fatalf("UpdateNC() error = %v", err)
	}
	items, err = env.svc.EffectivenessDue(ctx)
	if err != nil {
		t.Fatalf("EffectivenessDue() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("EffectivenessDue() after scoring = %v, want empty", items)
	}
}
