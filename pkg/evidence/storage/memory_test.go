package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"acgs-hq/quorum/pkg/evidence"
)

func seedRecords(t *testing.T, s evidence.Storage, n int, base time.Time) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		rec := &evidence.SynthesisRecord{
			ID:               fmt.Sprintf("rec-%03d", i),
			RequestID:        fmt.Sprintf("req-%03d", i),
			RequestTime:      base.Add(time.Duration(i) * time.Minute),
			TemplateID:       []string{"constitutional_v2", "safety_first_v1"}[i%2],
			TemplateCategory: []string{"constitutional", "safety_critical"}[i%2],
			Strategy:         "thompson",
			Consensus:        i%3 != 0,
			WeightedScore:    0.9,
			AgreementFactor:  0.85,
			Reward:           0.765,
			RewardRecorded:   true,
			ValidatorScores:  map[string]float64{"primary": 0.9},
		}
		if err := s.Store(ctx, rec); err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}
}

func TestMemoryStorageStoreAndCount(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	seedRecords(t, s, 10, time.Now().Add(-time.Hour))

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 10 {
		t.Errorf("Count() = %d, want 10", count)
	}
}

func TestMemoryStorageQueryNewestFirst(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedRecords(t, s, 5, base)

	records, err := s.Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Query() returned %d records, want 5", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].RequestTime.After(records[i-1].RequestTime) {
			t.Fatalf("records not ordered newest first at index %d", i)
		}
	}
	if records[0].ID != "rec-004" {
		t.Errorf("first record = %q, want rec-004", records[0].ID)
	}
}

func TestMemoryStorageQueryFilters(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedRecords(t, s, 12, base)

	consensusTrue := true
	start := base.Add(3 * time.Minute)
	end := base.Add(9 * time.Minute)

	tests := []struct {
		name  string
		query *evidence.Query
		want  int
	}{
		{name: "template filter", query: &evidence.Query{TemplateID: "constitutional_v2"}, want: 6},
		{name: "category filter", query: &evidence.Query{Category: "safety_critical"}, want: 6},
		{name: "consensus filter", query: &evidence.Query{Consensus: &consensusTrue}, want: 8},
		{name: "start inclusive", query: &evidence.Query{StartTime: &start}, want: 9},
		{name: "end exclusive", query: &evidence.Query{EndTime: &end}, want: 9},
		{name: "time window", query: &evidence.Query{StartTime: &start, EndTime: &end}, want: 6},
		{name: "limit", query: &evidence.Query{Limit: 4}, want: 4},
		{name: "offset", query: &evidence.Query{Offset: 10}, want: 2},
		{name: "offset past end", query: &evidence.Query{Offset: 50}, want: 0},
		{name: "limit with offset", query: &evidence.Query{Limit: 3, Offset: 2}, want: 3},
		{
			name:  "combined",
			query: &evidence.Query{TemplateID: "safety_first_v1", Consensus: &consensusTrue, Limit: 2},
			want:  2,
		},
		{name: "no match", query: &evidence.Query{TemplateID: "missing"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.Query(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("Query() returned %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestMemoryStorageCopiesRecords(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	ctx := context.Background()
	rec := &evidence.SynthesisRecord{ID: "rec-1", TemplateID: "t1", RequestTime: time.Now()}
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	// Mutating the caller's record must not affect the stored copy.
	rec.TemplateID = "mutated"

	records, err := s.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if records[0].TemplateID != "t1" {
		t.Errorf("stored record was mutated: TemplateID = %q", records[0].TemplateID)
	}
}

func TestMemoryStorageDeleteOlderThan(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedRecords(t, s, 10, base)

	cutoff := base.Add(4 * time.Minute)
	deleted, err := s.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 4 {
		t.Errorf("DeleteOlderThan() = %d, want 4", deleted)
	}

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 6 {
		t.Errorf("Count() = %d after prune, want 6", count)
	}

	// A record exactly at the cutoff survives.
	records, err := s.Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	oldest := records[len(records)-1]
	if !oldest.RequestTime.Equal(cutoff) {
		t.Errorf("oldest surviving record at %s, want %s", oldest.RequestTime, cutoff)
	}
}

func TestMemoryStorageDeleteOldest(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedRecords(t, s, 10, base)

	ctx := context.Background()

	deleted, err := s.DeleteOldest(ctx, 7)
	if err != nil {
		t.Fatalf("DeleteOldest() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("DeleteOldest() = %d, want 3", deleted)
	}

	records, err := s.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("Query() returned %d records, want 7", len(records))
	}
	// The three oldest must be gone.
	for _, rec := range records {
		if rec.ID == "rec-000" || rec.ID == "rec-001" || rec.ID == "rec-002" {
			t.Errorf("record %s should have been deleted", rec.ID)
		}
	}

	// Already at the cap: no-op.
	deleted, err = s.DeleteOldest(ctx, 7)
	if err != nil {
		t.Fatalf("DeleteOldest() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("DeleteOldest() = %d, want 0", deleted)
	}
}
