package validators

import "context"

// ScoreFunc adapts a plain function into a consensus.Validator.
// It is primarily used in tests and for custom one-off validators.
type ScoreFunc struct {
	// ValidatorName is the name reported by Name().
	ValidatorName string

	// Fn is invoked for each Score call.
	Fn func(ctx context.Context, principle, rule string) (float64, error)
}

// Score invokes the wrapped function.
func (s ScoreFunc) Score(ctx context.Context, principle, rule string) (float64, error) {
	return s.Fn(ctx, principle, rule)
}

// Name returns the validator name.
func (s ScoreFunc) Name() string {
	return s.ValidatorName
}
