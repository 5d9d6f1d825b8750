package evidence

import (
	"context"
	"time"
)

// SynthesisRecord is the complete audit trail for a single governance
// synthesis request: selection decision, consensus breakdown, and the
// reward fed back into the bandit.
type SynthesisRecord struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the synthesis pipeline

	// Timestamps
	RequestTime    time.Time `json:"request_time"`    // When the request entered the pipeline
	SelectionTime  time.Time `json:"selection_time"`  // When the template was selected
	ValidationTime time.Time `json:"validation_time"` // When consensus validation finished
	RecordedTime   time.Time `json:"recorded_time"`   // When evidence was recorded

	// Selection decision
	TemplateID       string `json:"template_id"`       // Selected template
	TemplateCategory string `json:"template_category"` // Its category
	Strategy         string `json:"strategy"`          // Selection strategy used
	EligibleCount    int    `json:"eligible_count"`    // Arms surviving the category filter

	// Request content (hashed; excerpts truncated)
	PrincipleHash    string `json:"principle_hash"`    // SHA-256 of principle text
	PrincipleExcerpt string `json:"principle_excerpt"` // First 200 chars
	TargetFormat     string `json:"target_format"`     // "datalog", "rego"
	SafetyLevel      string `json:"safety_level"`      // Requested safety level

	// Generated rule
	RuleHash    string `json:"rule_hash"`    // SHA-256 of rule code
	RuleExcerpt string `json:"rule_excerpt"` // First 200 chars

	// Consensus breakdown
	ValidatorScores   map[string]float64 `json:"validator_scores"`             // Raw per-validator scores
	ValidatorFailures map[string]string  `json:"validator_failures,omitempty"` // Zeroed validators and why
	WeightedScore     float64            `json:"weighted_score"`
	AgreementFactor   float64            `json:"agreement_factor"`
	Consensus         bool               `json:"consensus"`

	// Feedback loop
	Reward         float64 `json:"reward"`          // Reward recorded into the selector
	RewardRecorded bool    `json:"reward_recorded"` // False when synthesis aborted early

	// Latency
	GenerationLatency time.Duration `json:"generation_latency"` // Rule generation round-trip
	ValidationLatency time.Duration `json:"validation_latency"` // Consensus fan-out duration

	// Error info
	Error     string `json:"error,omitempty"`      // Error message if synthesis failed
	ErrorType string `json:"error_type,omitempty"` // "selection", "generation", "validation"
}

// Query defines filter parameters for querying synthesis records.
type Query struct {
	// StartTime is the inclusive lower bound on RequestTime.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime is the exclusive upper bound on RequestTime.
	EndTime *time.Time `json:"end_time,omitempty"`

	// TemplateID filters by selected template.
	TemplateID string `json:"template_id,omitempty"`

	// Category filters by template category.
	Category string `json:"category,omitempty"`

	// Consensus filters by verdict when non-nil.
	Consensus *bool `json:"consensus,omitempty"`

	// Limit caps the number of returned records (0 = no limit).
	Limit int `json:"limit,omitempty"`

	// Offset skips the first N matching records.
	Offset int `json:"offset,omitempty"`
}

// Storage is the interface for synthesis record persistence backends.
type Storage interface {
	// Store persists a synthesis record.
	Store(ctx context.Context, record *SynthesisRecord) error

	// Query retrieves records matching the query filters, newest first.
	Query(ctx context.Context, query *Query) ([]*SynthesisRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan deletes records with RequestTime before the cutoff
	// and returns the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest deletes the oldest records until at most keep remain
	// and returns the number deleted.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Close releases backend resources.
	Close() error
}
