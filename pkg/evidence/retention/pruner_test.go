package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"acgs-hq/quorum/pkg/evidence"
	"acgs-hq/quorum/pkg/evidence/storage"
)

func seedAged(t *testing.T, store evidence.Storage, ageDays []int) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	for i, days := range ageDays {
		rec := &evidence.SynthesisRecord{
			ID:               fmt.Sprintf("rec-%03d", i),
			RequestID:        fmt.Sprintf("req-%03d", i),
			RequestTime:      now.AddDate(0, 0, -days),
			TemplateID:       "constitutional_v2",
			TemplateCategory: "constitutional",
			Strategy:         "thompson",
		}
		if err := store.Store(ctx, rec); err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}
}

func TestPruneByAge(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedAged(t, store, []int{200, 120, 91, 89, 30, 0})

	p := NewPruner(store, &Config{RetentionDays: 90})

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() = %d, want 3", deleted)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d after prune, want 3", count)
	}
}

func TestPruneByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedAged(t, store, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})

	p := NewPruner(store, &Config{RetentionDays: 0, MaxRecords: 4})

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 6 {
		t.Errorf("Prune() = %d, want 6", deleted)
	}

	// The four newest (smallest age) survive.
	records, err := store.Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Query() returned %d records, want 4", len(records))
	}
	for _, rec := range records {
		if rec.RequestTime.Before(time.Now().AddDate(0, 0, -5)) {
			t.Errorf("old record %s survived count pruning", rec.ID)
		}
	}
}

func TestPruneBothPhases(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedAged(t, store, []int{120, 100, 5, 4, 3, 2, 1})

	p := NewPruner(store, &Config{RetentionDays: 90, MaxRecords: 3})

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	// 2 by age, then 2 more by count (5 remaining > 3).
	if deleted != 4 {
		t.Errorf("Prune() = %d, want 4", deleted)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestPruneDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedAged(t, store, []int{500, 400, 300})

	p := NewPruner(store, &Config{RetentionDays: 0, MaxRecords: 0})

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() = %d, want 0 with retention disabled", deleted)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestPruneCountWithinLimit(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedAged(t, store, []int{3, 2, 1})

	p := NewPruner(store, &Config{MaxRecords: 10})

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() = %d, want 0 when under the cap", deleted)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := NewPruner(store, &Config{RetentionDays: 90, PruneSchedule: "0 3 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.scheduler.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	next := p.NextPruning()
	if next == nil {
		t.Fatal("NextPruning() = nil, want a scheduled time")
	}
	if !next.After(time.Now()) {
		t.Errorf("NextPruning() = %s, want a future time", next)
	}

	p.Stop()
	if p.scheduler.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := NewPruner(store, &Config{RetentionDays: 90, PruneSchedule: ""})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if p.scheduler.IsRunning() {
		t.Error("IsRunning() = true with empty schedule")
	}
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := NewPruner(store, &Config{RetentionDays: 90, PruneSchedule: "every day at dawn"})

	if err := p.Start(context.Background()); err == nil {
		t.Error("Start() should fail for an invalid cron expression")
	}
}
