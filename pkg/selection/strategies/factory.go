package strategies

import (
	"acgs-hq/quorum/pkg/selection"
)

// Config contains the configuration needed to construct any built-in
// strategy by name.
type Config struct {
	// Name selects the strategy: "thompson", "epsilon-greedy", or "ucb1".
	Name string

	// Seed seeds randomized strategies. Zero selects a nondeterministic seed.
	Seed uint64

	// Epsilon is the exploration probability for epsilon-greedy.
	Epsilon float64

	// ExplorationConstant scales the UCB1 exploration bonus.
	ExplorationConstant float64
}

// New constructs a strategy from its configured name.
// Returns selection.InvalidStrategyError for unknown names.
func New(cfg Config) (Strategy, error) {
	switch cfg.Name {
	case NameThompson, "":
		return NewThompson(ThompsonConfig{Seed: cfg.Seed}), nil
	case NameEpsilonGreedy:
		return NewEpsilonGreedy(EpsilonGreedyConfig{Epsilon: cfg.Epsilon, Seed: cfg.Seed})
	case NameUCB1:
		return NewUCB1(UCB1Config{ExplorationConstant: cfg.ExplorationConstant}), nil
	default:
		return nil, &selection.InvalidStrategyError{
			Strategy:            cfg.Name,
			AvailableStrategies: Available(),
		}
	}
}
