package recorder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"acgs-hq/quorum/pkg/evidence"
	"acgs-hq/quorum/pkg/evidence/storage"
)

func TestHashContent(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := HashContent(nil); got != "" {
			t.Errorf("HashContent(nil) = %q, want empty", got)
		}
		if got := HashString(""); got != "" {
			t.Errorf("HashString(\"\") = %q, want empty", got)
		}
	})

	t.Run("known value", func(t *testing.T) {
		sum := sha256.Sum256([]byte("no pii without consent"))
		want := hex.EncodeToString(sum[:])
		if got := HashString("no pii without consent"); got != want {
			t.Errorf("HashString() = %q, want %q", got, want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		if HashString("abc") != HashString("abc") {
			t.Error("same input produced different hashes")
		}
		if HashString("abc") == HashString("abd") {
			t.Error("different inputs produced the same hash")
		}
	})

	t.Run("large content capped", func(t *testing.T) {
		base := make([]byte, MaxHashSize+100)
		for i := range base {
			base[i] = byte(i % 251)
		}
		other := make([]byte, MaxHashSize+200)
		copy(other, base)

		// Bytes past the cap do not affect the hash.
		if HashContent(base) != HashContent(other) {
			t.Error("content past MaxHashSize changed the hash")
		}
	})
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "shorter than limit", input: "short", maxLen: 10, want: "short"},
		{name: "exactly at limit", input: "12345", maxLen: 5, want: "12345"},
		{name: "over limit", input: "123456789", maxLen: 5, want: "12345..."},
		{name: "zero limit passes through", input: "anything", maxLen: 0, want: "anything"},
		{name: "multibyte runes", input: "héllo wörld", maxLen: 5, want: "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestRecorderPersistsHashedRecord(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, &Config{
		Enabled:        true,
		AsyncBuffer:    10,
		WriteTimeout:   time.Second,
		MaxFieldLength: 10,
	})

	principle := "No automated decision may use personal data without consent"
	rule := `deny(Action) :- involves_pii(Action), not consented(Action).`

	err := r.Record(context.Background(), &Outcome{
		RequestID:        "req-1",
		RequestTime:      time.Now(),
		TemplateID:       "constitutional_v2",
		TemplateCategory: "constitutional",
		Strategy:         "thompson",
		EligibleCount:    2,
		Principle:        principle,
		TargetFormat:     "datalog",
		SafetyLevel:      "high",
		Rule:             rule,
		ValidatorScores:  map[string]float64{"primary": 0.95},
		WeightedScore:    0.95,
		AgreementFactor:  0.95,
		Consensus:        true,
		Reward:           0.9025,
		RewardRecorded:   true,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	// Close drains the channel, so the record is persisted afterwards.
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	records, err := store.Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.ID == "" {
		t.Error("record ID not assigned")
	}
	if rec.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", rec.RequestID)
	}
	if rec.PrincipleHash != HashString(principle) {
		t.Errorf("PrincipleHash = %q, want hash of principle", rec.PrincipleHash)
	}
	if rec.RuleHash != HashString(rule) {
		t.Errorf("RuleHash = %q, want hash of rule", rec.RuleHash)
	}

	// Raw text must never be stored whole; excerpts are truncated.
	if rec.PrincipleExcerpt == principle || !strings.HasSuffix(rec.PrincipleExcerpt, "...") {
		t.Errorf("PrincipleExcerpt = %q, want truncated excerpt", rec.PrincipleExcerpt)
	}
	if rec.RuleExcerpt == rule || !strings.HasSuffix(rec.RuleExcerpt, "...") {
		t.Errorf("RuleExcerpt = %q, want truncated excerpt", rec.RuleExcerpt)
	}

	if rec.Reward != 0.9025 || !rec.RewardRecorded {
		t.Errorf("reward = (%g, %v), want (0.9025, true)", rec.Reward, rec.RewardRecorded)
	}
	if rec.RecordedTime.IsZero() {
		t.Error("RecordedTime not set")
	}
}

func TestRecorderDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, &Config{Enabled: false, AsyncBuffer: 1, WriteTimeout: time.Second})

	if err := r.Record(context.Background(), &Outcome{RequestID: "req-1"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0 when disabled", count)
	}
}

func TestRecorderErrorOutcome(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil)

	err := r.Record(context.Background(), &Outcome{
		RequestID:      "req-err",
		RequestTime:    time.Now(),
		Principle:      "some principle",
		Err:            errors.New("model unavailable"),
		ErrorType:      "generation",
		RewardRecorded: false,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	records, err := store.Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}
	if records[0].Error != "model unavailable" || records[0].ErrorType != "generation" {
		t.Errorf("error fields = (%q, %q)", records[0].Error, records[0].ErrorType)
	}
	if records[0].RewardRecorded {
		t.Error("RewardRecorded = true, want false for aborted synthesis")
	}
}

func TestRecorderCloseDrainsBacklog(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, &Config{
		Enabled:      true,
		AsyncBuffer:  100,
		WriteTimeout: time.Second,
	})

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if err := r.Record(ctx, &Outcome{
			RequestID:   "req",
			RequestTime: time.Now(),
			Principle:   "p",
		}); err != nil {
			t.Fatalf("Record(%d) error = %v", i, err)
		}
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 50 {
		t.Errorf("Count() = %d after Close, want 50", count)
	}
}

func TestRecordAfterCloseFails(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err := r.Record(context.Background(), &Outcome{RequestID: "late"})
	var recErr *evidence.RecorderError
	if !errors.As(err, &recErr) {
		t.Errorf("Record() after Close error = %v, want RecorderError", err)
	}
}
