package strategies

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"acgs-hq/quorum/pkg/selection"
)

// Thompson implements Thompson sampling over Beta posteriors. For each
// eligible arm it draws a sample from Beta(alpha, beta) and returns the arm
// with the maximum sampled value.
//
// Ties are broken toward the first-registered arm: the eligible list arrives
// in registration order and only a strictly greater sample displaces the
// current best.
type Thompson struct {
	mu  sync.Mutex
	rng *rand.Rand

	seed uint64
}

// ThompsonConfig contains configuration for the Thompson sampling strategy.
type ThompsonConfig struct {
	// Seed seeds the random source. Zero selects a nondeterministic seed;
	// a fixed value yields a reproducible selection sequence for testing.
	Seed uint64
}

// NewThompson creates a new Thompson sampling strategy.
func NewThompson(cfg ThompsonConfig) *Thompson {
	return &Thompson{
		rng:  newRand(cfg.Seed),
		seed: cfg.Seed,
	}
}

// SelectArm draws one Beta sample per eligible arm and returns the argmax.
func (t *Thompson) SelectArm(req *selection.Request, eligible []*selection.Arm) (*selection.Arm, error) {
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no arms available for thompson sampling")
	}
	if len(eligible) == 1 {
		return eligible[0], nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	best := eligible[0]
	alpha, beta := best.Posterior()
	bestSample := sampleBeta(t.rng, alpha, beta)

	for _, arm := range eligible[1:] {
		alpha, beta = arm.Posterior()
		sample := sampleBeta(t.rng, alpha, beta)
		if sample > bestSample {
			best = arm
			bestSample = sample
		}
	}

	return best, nil
}

// Name returns the strategy name.
func (t *Thompson) Name() string {
	return NameThompson
}

// Reset re-seeds the random source from the configured seed.
func (t *Thompson) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rng = newRand(t.seed)
}
