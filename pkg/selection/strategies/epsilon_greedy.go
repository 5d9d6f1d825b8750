package strategies

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"acgs-hq/quorum/pkg/selection"
)

// DefaultEpsilon is the default exploration probability for the
// epsilon-greedy strategy.
const DefaultEpsilon = 0.1

// EpsilonGreedy explores a uniformly random eligible arm with probability
// epsilon and otherwise exploits the arm with the highest posterior mean.
type EpsilonGreedy struct {
	mu  sync.Mutex
	rng *rand.Rand

	epsilon float64
	seed    uint64
}

// EpsilonGreedyConfig contains configuration for the epsilon-greedy strategy.
type EpsilonGreedyConfig struct {
	// Epsilon is the exploration probability in [0,1]. Default: 0.1.
	Epsilon float64

	// Seed seeds the random source. Zero selects a nondeterministic seed.
	Seed uint64
}

// NewEpsilonGreedy creates a new epsilon-greedy strategy.
func NewEpsilonGreedy(cfg EpsilonGreedyConfig) (*EpsilonGreedy, error) {
	epsilon := cfg.Epsilon
	if epsilon == 0 {
		epsilon = DefaultEpsilon
	}
	if epsilon < 0 || epsilon > 1 {
		return nil, fmt.Errorf("epsilon must be in [0,1], got %g", cfg.Epsilon)
	}

	return &EpsilonGreedy{
		rng:     newRand(cfg.Seed),
		epsilon: epsilon,
		seed:    cfg.Seed,
	}, nil
}

// SelectArm picks a random eligible arm with probability epsilon, otherwise
// the eligible arm with the highest posterior mean. Ties go to the
// first-registered arm.
func (e *EpsilonGreedy) SelectArm(req *selection.Request, eligible []*selection.Arm) (*selection.Arm, error) {
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no arms available for epsilon-greedy selection")
	}
	if len(eligible) == 1 {
		return eligible[0], nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rng.Float64() < e.epsilon {
		return eligible[e.rng.IntN(len(eligible))], nil
	}

	best := eligible[0]
	bestMean := best.Mean()
	for _, arm := range eligible[1:] {
		if mean := arm.Mean(); mean > bestMean {
			best = arm
			bestMean = mean
		}
	}
	return best, nil
}

// Name returns the strategy name.
func (e *EpsilonGreedy) Name() string {
	return NameEpsilonGreedy
}

// Reset re-seeds the random source from the configured seed.
func (e *EpsilonGreedy) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = newRand(e.seed)
}
