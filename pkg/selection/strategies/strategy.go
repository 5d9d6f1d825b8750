// Package strategies provides selection strategy implementations for the
// template selector: Thompson sampling (default), epsilon-greedy, and UCB1.
//
// All strategies operate only on the eligible arm list handed to them by the
// selector; they never reach back into the full catalog.
package strategies

import (
	"acgs-hq/quorum/pkg/selection"
)

// Strategy is the interface that all selection strategies must implement.
// It mirrors selection.Strategy; the selector accepts any implementation.
//
// Implementations must be thread-safe as they will be called concurrently
// from multiple goroutines handling simultaneous synthesis requests.
//
// Example usage:
//
//	strategy := strategies.NewThompson(strategies.ThompsonConfig{})
//	selector, err := selection.NewSelector(strategy, logger)
type Strategy interface {
	// SelectArm selects one arm from the eligible list based on the
	// strategy's algorithm. The list is already filtered for eligibility;
	// implementations must only consider and return arms from it.
	SelectArm(req *selection.Request, eligible []*selection.Arm) (*selection.Arm, error)

	// Name returns the strategy name for logging and statistics.
	// Examples: "thompson", "epsilon-greedy", "ucb1"
	Name() string

	// Reset resets the strategy's internal state.
	// This is primarily used for testing.
	Reset()
}

// Names of the built-in strategies, as used in configuration.
const (
	NameThompson      = "thompson"
	NameEpsilonGreedy = "epsilon-greedy"
	NameUCB1          = "ucb1"
)

// Available returns the names of all built-in strategies.
func Available() []string {
	return []string{NameThompson, NameEpsilonGreedy, NameUCB1}
}
