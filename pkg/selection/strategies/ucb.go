package strategies

import (
	"fmt"
	"math"

	"acgs-hq/quorum/pkg/selection"
)

// UCB1 implements the Upper Confidence Bound strategy. Each eligible arm is
// scored by its posterior mean plus an exploration bonus that shrinks as the
// arm accumulates pulls; unpulled arms are always tried first.
//
// UCB1 is deterministic given arm statistics, which makes it useful for
// reproducing selection traces without seeding a random source.
type UCB1 struct {
	// c scales the exploration bonus. The classic UCB1 constant is sqrt(2).
	c float64
}

// UCB1Config contains configuration for the UCB1 strategy.
type UCB1Config struct {
	// ExplorationConstant scales the exploration bonus.
	// Default: sqrt(2).
	ExplorationConstant float64
}

// NewUCB1 creates a new UCB1 strategy.
func NewUCB1(cfg UCB1Config) *UCB1 {
	c := cfg.ExplorationConstant
	if c <= 0 {
		c = math.Sqrt2
	}
	return &UCB1{c: c}
}

// SelectArm returns the eligible arm maximizing mean + c*sqrt(ln(N)/n),
// where N is the total pulls across eligible arms and n the arm's own pulls.
// Arms with zero pulls are selected immediately, first-registered first.
func (u *UCB1) SelectArm(req *selection.Request, eligible []*selection.Arm) (*selection.Arm, error) {
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no arms available for ucb1 selection")
	}

	var totalPulls int64
	for _, arm := range eligible {
		pulls := arm.Pulls()
		if pulls == 0 {
			return arm, nil
		}
		totalPulls += pulls
	}

	best := eligible[0]
	bestScore := u.score(best, totalPulls)
	for _, arm := range eligible[1:] {
		if score := u.score(arm, totalPulls); score > bestScore {
			best = arm
			bestScore = score
		}
	}
	return best, nil
}

// score computes the UCB1 index for one arm.
func (u *UCB1) score(arm *selection.Arm, totalPulls int64) float64 {
	pulls := float64(arm.Pulls())
	return arm.Mean() + u.c*math.Sqrt(math.Log(float64(totalPulls))/pulls)
}

// Name returns the strategy name.
func (u *UCB1) Name() string {
	return NameUCB1
}

// Reset is a no-op; UCB1 keeps no internal state.
func (u *UCB1) Reset() {}
