package nc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"nctrack/internal/infrastructure/cache"
	"nctrack/internal/infrastructure/persistence/sqlite/model"
	"nctrack/internal/infrastructure/persistence/sqlite/repository"
	"nctrack/internal/infrastructure/persistence/sqlite/uow"
	"nctrack/internal/ports"
)

type notifierCall struct {
	event     string
	recordID  int64
	oldStatus string
}

// recordingNotifier captures sends; err, when set, fails every send.
type recordingNotifier struct {
	calls []notifierCall
	err   error
}

func (n *recordingNotifier) NCAssigned(_ context.Context, record ports.NonConformance) error {
	n.calls = append(n.calls, notifierCall{event: "nc_assigned", recordID: record.ID})
	return n.err
}

func (n *recordingNotifier) NCStatusChanged(_ context.Context, record ports.NonConformance, oldStatus string) error {
	n.calls = append(n.calls, notifierCall{event: "nc_status_changed", recordID: record.ID, oldStatus: oldStatus})
	return n.err
}

// testEnv wires the service over a throwaway sqlite file with an inline
// notification dispatcher and a controllable clock.
type testEnv struct {
	svc      *Service
	repo     *repository.NCRepository
	notifier *recordingNotifier
	nowValue time.Time
}

func (e *testEnv) advance(d time.Duration) {
	e.nowValue = e.nowValue.Add(d)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nctrack.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.NonConformance{}, &model.Comment{}, &model.ReportKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	env := &testEnv{
		repo:     repository.NewNCRepository(db),
		notifier: &recordingNotifier{},
		nowValue: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(env.repo, uow.NewUnitOfWork(db), cache.NewSQLiteCache(db), env.notifier, Options{
		ReportCacheTTL: time.Minute,
		Now:            func() time.Time { return env.nowValue },
	})
	env.svc.dispatch = func(fn func()) { fn() }
	return env
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func minimalCreate() CreateNCInput {
	return CreateNCInput{
		Title:        "Leaking seal on pump P-101",
		Description:  "Oil residue found during walkthrough",
		DateReported: "2024-05-01",
		Status:       "Open",
		Severity:     "Medium",
	}
}
