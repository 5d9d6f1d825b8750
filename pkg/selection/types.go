package selection

import (
	"time"

	"acgs-hq/quorum/pkg/catalog"
)

// Request contains all information needed to make a template selection
// decision. It is request-scoped and never persisted.
type Request struct {
	// RequestID is the unique identifier for this synthesis request.
	RequestID string

	// Category restricts the eligible arm set to templates whose category
	// matches exactly (case-sensitive). Empty means all templates are
	// eligible.
	Category string

	// SafetyLevel is the requested safety level ("standard", "high",
	// "critical"). Advisory for contextual strategies; not used for
	// eligibility filtering.
	SafetyLevel string

	// TargetFormat is the requested rule language ("datalog", "rego").
	TargetFormat string

	// PrincipleComplexity is a coarse complexity signal for the source
	// principle ("low", "medium", "high").
	PrincipleComplexity string

	// Metadata contains additional selection signals.
	Metadata map[string]string
}

// Result contains the outcome of a selection decision, including metadata
// about the decision for the audit trail.
type Result struct {
	// TemplateID is the ID of the selected template.
	TemplateID string

	// Template is the selected template instance.
	Template *catalog.Template

	// Strategy is the selection strategy that was used.
	// Values: "thompson", "epsilon-greedy", "ucb1"
	Strategy string

	// Reason explains why this template was selected.
	Reason string

	// EligibleCount is the number of arms that survived the category filter.
	EligibleCount int
}

// ArmState is a serializable snapshot of a single arm's posterior, used for
// persistence across restarts and for introspection.
type ArmState struct {
	// TemplateID identifies the arm.
	TemplateID string `json:"template_id"`

	// Alpha is the Beta posterior success shape parameter. Always > 0.
	Alpha float64 `json:"alpha"`

	// Beta is the Beta posterior failure shape parameter. Always > 0.
	Beta float64 `json:"beta"`

	// Pulls is the number of outcomes observed for this arm.
	Pulls int64 `json:"pulls"`

	// RewardSum is the cumulative reward observed for this arm.
	RewardSum float64 `json:"reward_sum"`
}

// Mean returns the posterior mean alpha/(alpha+beta).
func (s ArmState) Mean() float64 {
	return s.Alpha / (s.Alpha + s.Beta)
}

// Stats contains statistics about selection decisions.
// All counters are updated atomically for thread safety.
type Stats struct {
	// TotalSelections is the total number of selection requests processed.
	TotalSelections int64

	// SelectionsPerTemplate tracks selections per template ID.
	SelectionsPerTemplate map[string]int64

	// StrategyUseCount tracks how many times each strategy was used.
	StrategyUseCount map[string]int64

	// CategoryFilteredCount is the number of requests with a category filter.
	CategoryFilteredCount int64

	// OutcomesRecorded is the number of rewards recorded.
	OutcomesRecorded int64

	// Errors is the total number of selection errors.
	Errors int64

	// LastResetTime is when statistics were last reset.
	LastResetTime time.Time
}
