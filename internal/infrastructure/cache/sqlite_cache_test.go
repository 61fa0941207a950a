package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"nctrack/internal/infrastructure/persistence/sqlite/model"
)

func setupCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cache.sqlite")
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
	if err := db.AutoMigrate(&model.ReportKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteCache(db)
}

func TestCacheSetGetDelete(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "reports:stats"); err != nil || found {
		t.Fatalf("Get() on empty cache = (found=%v, err=%v)", found, err)
	}

	if err := c.Set(ctx, "reports:stats", `{"total":3}`, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, found, err := c.Get(ctx, "reports:stats")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != `{"total":3}` {
		t.Fatalf("Get() = (%q, %v), want stored payload", value, found)
	}

	if err := c.Set(ctx, "reports:stats", `{"total":4}`, time.Minute); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	value, found, _ = c.Get(ctx, "reports:stats")
	if !found || value != `{"total":4}` {
		t.Fatalf("Get() after overwrite = (%q, %v)", value, found)
	}

	if err := c.Delete(ctx, "reports:stats"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, "reports:stats"); found {
		t.Fatal("Get() found deleted key")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "reports:stats"); err != nil {
		t.Fatalf("Delete() missing key error = %v", err)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	if err := c.Set(ctx, "reports:analytics", "payload", 30*time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, found, _ := c.Get(ctx, "reports:analytics"); !found {
		t.Fatal("Get() before expiry found = false")
	}

	current = current.Add(29 * time.Second)
	if _, found, _ := c.Get(ctx, "reports:analytics"); !found {
		t.Fatal("Get() just before expiry found = false")
	}

	current = current.Add(2 * time.Second)
	if _, found, err := c.Get(ctx, "reports:analytics"); err != nil || found {
		t.Fatalf("Get() after expiry = (found=%v, err=%v), want miss", found, err)
	}

	// A fresh Set revives the key.
	if err := c.Set(ctx, "reports:analytics", "payload2", time.Minute); err != nil {
		t.Fatalf("Set() after expiry error = %v", err)
	}
	value, found, _ := c.Get(ctx, "reports:analytics")
	if !found || value != "payload2" {
		t.Fatalf("Get() after revive = (%q, %v)", value, found)
	}
}

func TestCacheNoTTLNeverExpires(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	if err := c.Set(ctx, "pinned", "forever", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	current = current.Add(1000 * time.Hour)
	value, found, err := c.Get(ctx, "pinned")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != "forever" {
		t.Fatalf("Get() = (%q, %v), want pinned value", value, found)
	}
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if _, _, err := c.Get(ctx, "  "); err == nil {
		t.Error("Get() empty key expected error")
	}
	if err := c.Set(ctx, "", "v", time.Minute); err == nil {
		t.Error("Set() empty key expected error")
	}
	if err := c.Delete(ctx, ""); err == nil {
		t.Error("Delete() empty key expected error")
	}
}
