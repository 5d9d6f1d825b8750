package pipeline

import (
	"context"
	"time"

	"acgs-hq/quorum/pkg/consensus"
)

// Generator turns a rendered synthesis prompt into a candidate policy rule.
// Implementations typically wrap an LLM; tests use stubs.
type Generator interface {
	// Generate produces rule code in the requested target format from the
	// rendered prompt.
	Generate(ctx context.Context, prompt, targetFormat string) (string, error)
}

// SynthesisRequest is one request to synthesize a policy rule from a
// constitutional principle.
type SynthesisRequest struct {
	// Principle is the natural-language constitutional principle.
	Principle string

	// Category restricts template selection to a single category.
	// Empty means any template is eligible.
	Category string

	// TargetFormat is the requested rule language ("datalog", "rego").
	TargetFormat string

	// SafetyLevel is the requested safety level ("standard", "high",
	// "critical").
	SafetyLevel string

	// PrincipleComplexity is a coarse complexity signal ("low", "medium",
	// "high").
	PrincipleComplexity string

	// Context carries extra key/value pairs into template rendering.
	Context map[string]string
}

// SynthesisResult is the outcome of one synthesis attempt.
type SynthesisResult struct {
	// RequestID is the generated identifier for this attempt.
	RequestID string

	// TemplateID is the template the bandit selected.
	TemplateID string

	// Strategy is the selection strategy that was used.
	Strategy string

	// Rule is the generated rule code.
	Rule string

	// Validation is the consensus breakdown for the generated rule.
	Validation *consensus.Result

	// Reward is the value fed back into the selector, the product of
	// weighted score and agreement factor.
	Reward float64

	// Accepted reports whether the rule passed the consensus gate.
	Accepted bool

	// GenerationLatency is the rule generation round-trip duration.
	GenerationLatency time.Duration

	// ValidationLatency is the consensus fan-out duration.
	ValidationLatency time.Duration
}
