package consensus

import (
	"context"
	"time"
)

// Validator scores a synthesized rule against its source principle.
// Implementations delegate to opaque backends: an LLM call, a formal
// verification tool, or an embedding-similarity service.
type Validator interface {
	// Score returns a score in [0,1] indicating how faithfully the rule
	// implements the principle. Implementations should honor context
	// cancellation; errors and timeouts are absorbed by the consensus
	// calculation as a 0.0 score.
	Score(ctx context.Context, principle, rule string) (float64, error)

	// Name returns the validator name used for weights, logging, and the
	// score breakdown. Examples: "primary", "adversarial", "formal",
	// "semantic".
	Name() string
}

// Result is the outcome of one consensus validation. It is immutable once
// returned; the Scores map is freshly allocated per call.
type Result struct {
	// Scores maps validator name to its raw score in [0,1]. Validators
	// that failed or timed out contribute 0.0.
	Scores map[string]float64 `json:"scores"`

	// WeightedScore is the weight-combined score across validators.
	WeightedScore float64 `json:"weighted_score"`

	// AgreementFactor is the minimum score across validators, the weakest
	// link in the panel.
	AgreementFactor float64 `json:"agreement_factor"`

	// Consensus is true when WeightedScore * AgreementFactor meets the
	// configured threshold.
	Consensus bool `json:"consensus"`

	// Failures maps validator name to the failure reason for validators
	// whose score was zeroed ("timeout", "error: ...", "malformed score").
	// Empty when all validators returned cleanly.
	Failures map[string]string `json:"failures,omitempty"`

	// Duration is the wall-clock time of the whole validation fan-out.
	Duration time.Duration `json:"duration"`
}

// Config contains configuration for the heterogeneous validator.
type Config struct {
	// Weights maps validator name to its weight in the combined score.
	// Weights must be non-negative, cover every registered validator, and
	// sum to 1.0 (within 1e-9). Validated at construction time.
	Weights map[string]float64

	// Threshold is the consensus gate: consensus passes when the product
	// of weighted score and agreement factor reaches it. Must be in (0,1].
	// Default: 0.85.
	Threshold float64

	// ValidatorTimeout bounds each validator call. A timeout is treated
	// identically to a validator failure (score 0.0, logged).
	// Default: 30s.
	ValidatorTimeout time.Duration
}

// DefaultConfig returns the default consensus configuration for the given
// weight table.
func DefaultConfig(weights map[string]float64) Config {
	return Config{
		Weights:          weights,
		Threshold:        0.85,
		ValidatorTimeout: 30 * time.Second,
	}
}
