package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")
	storage, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func testRecord(route string, status int, at time.Time) *Record {
	return &Record{
		ID:         uuid.New().String(),
		RequestID:  uuid.New().String(),
		Time:       at,
		Method:     "GET",
		Path:       route,
		Route:      route,
		Status:     status,
		DurationMs: 42,
		ClientIP:   "198.51.100.7",
		UserAgent:  "test-agent",
	}
}

func TestSQLiteStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("store and query round trip", func(t *testing.T) {
		storage := newTestStorage(t)

		record := testRecord("/search", 200, time.Now().UTC())
		record.Query = "chicken"
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store failed: %v", err)
		}

		got, err := storage.Query(ctx, &Query{})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
		if got[0].ID != record.ID || got[0].Query != "chicken" || got[0].Status != 200 {
			t.Errorf("record mismatch: %+v", got[0])
		}
	})

	t.Run("filters by route and status", func(t *testing.T) {
		storage := newTestStorage(t)
		now := time.Now().UTC()

		for _, r := range []*Record{
			testRecord("/search", 200, now),
			testRecord("/search", 400, now),
			testRecord("/barcode/{code}", 404, now),
		} {
			if err := storage.Store(ctx, r); err != nil {
				t.Fatalf("Store failed: %v", err)
			}
		}

		got, err := storage.Query(ctx, &Query{Route: "/search", Status: 400})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) != 1 || got[0].Status != 400 {
			t.Errorf("expected single 400 /search record, got %+v", got)
		}

		count, err := storage.Count(ctx, &Query{Route: "/search"})
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 2 {
			t.Errorf("Count = %d, want 2", count)
		}
	})

	t.Run("orders newest first with limit", func(t *testing.T) {
		storage := newTestStorage(t)
		base := time.Now().UTC().Add(-time.Hour)

		var newest string
		for i := 0; i < 5; i++ {
			r := testRecord("/search", 200, base.Add(time.Duration(i)*time.Minute))
			newest = r.ID
			if err := storage.Store(ctx, r); err != nil {
				t.Fatalf("Store failed: %v", err)
			}
		}

		got, err := storage.Query(ctx, &Query{Limit: 2})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		if got[0].ID != newest {
			t.Errorf("expected newest record first")
		}
	})

	t.Run("delete before cutoff", func(t *testing.T) {
		storage := newTestStorage(t)
		now := time.Now().UTC()

		old := testRecord("/search", 200, now.AddDate(0, 0, -100))
		fresh := testRecord("/search", 200, now)
		for _, r := range []*Record{old, fresh} {
			if err := storage.Store(ctx, r); err != nil {
				t.Fatalf("Store failed: %v", err)
			}
		}

		deleted, err := storage.DeleteBefore(ctx, now.AddDate(0, 0, -90))
		if err != nil {
			t.Fatalf("DeleteBefore failed: %v", err)
		}
		if deleted != 1 {
			t.Errorf("deleted = %d, want 1", deleted)
		}

		remaining, err := storage.Count(ctx, &Query{})
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if remaining != 1 {
			t.Errorf("remaining = %d, want 1", remaining)
		}
	})

	t.Run("empty error column scans as empty string", func(t *testing.T) {
		storage := newTestStorage(t)

		if err := storage.Store(ctx, testRecord("/health", 200, time.Now().UTC())); err != nil {
			t.Fatalf("Store failed: %v", err)
		}

		got, err := storage.Query(ctx, &Query{})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if got[0].Error != "" {
			t.Errorf("expected empty error, got %q", got[0].Error)
		}
	})
}

func TestPruner(t *testing.T) {
	ctx := context.Background()

	t.Run("prunes old records", func(t *testing.T) {
		storage := newTestStorage(t)
		now := time.Now().UTC()

		for _, r := range []*Record{
			testRecord("/search", 200, now.AddDate(0, 0, -120)),
			testRecord("/search", 200, now.AddDate(0, 0, -100)),
			testRecord("/search", 200, now),
		} {
			if err := storage.Store(ctx, r); err != nil {
				t.Fatalf("Store failed: %v", err)
			}
		}

		pruner := NewPruner(storage, &RetentionConfig{RetentionDays: 90})
		deleted, err := pruner.Prune(ctx)
		if err != nil {
			t.Fatalf("Prune failed: %v", err)
		}
		if deleted != 2 {
			t.Errorf("deleted = %d, want 2", deleted)
		}
	})

	t.Run("zero retention keeps everything", func(t *testing.T) {
		storage := newTestStorage(t)
		if err := storage.Store(ctx, testRecord("/search", 200, time.Now().UTC().AddDate(-1, 0, 0))); err != nil {
			t.Fatalf("Store failed: %v", err)
		}

		pruner := NewPruner(storage, &RetentionConfig{RetentionDays: 0})
		deleted, err := pruner.Prune(ctx)
		if err != nil {
			t.Fatalf("Prune failed: %v", err)
		}
		if deleted != 0 {
			t.Errorf("deleted = %d, want 0", deleted)
		}
	})

	t.Run("empty schedule skips scheduler", func(t *testing.T) {
		storage := newTestStorage(t)
		pruner := NewPruner(storage, &RetentionConfig{RetentionDays: 90, PruneSchedule: ""})

		if err := pruner.Start(ctx); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if pruner.IsRunning() {
			t.Error("scheduler should not run without a schedule")
		}
	})

	t.Run("invalid schedule rejected", func(t *testing.T) {
		storage := newTestStorage(t)
		pruner := NewPruner(storage, &RetentionConfig{RetentionDays: 90, PruneSchedule: "not-cron"})

		if err := pruner.Start(ctx); err == nil {
			t.Error("expected error for invalid schedule")
		}
	})

	t.Run("start and stop", func(t *testing.T) {
		storage := newTestStorage(t)
		pruner := NewPruner(storage, &RetentionConfig{RetentionDays: 90, PruneSchedule: "0 3 * * *"})

		if err := pruner.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if !pruner.IsRunning() {
			t.Error("scheduler should be running")
		}

		pruner.Stop()
		if pruner.IsRunning() {
			t.Error("scheduler should be stopped")
		}
	})
}
