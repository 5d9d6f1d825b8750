package selection

import (
	"sync"

	"acgs-hq/quorum/pkg/catalog"
)

// Arm is one candidate template tracked by the bandit. Its Beta(alpha, beta)
// posterior models the template's success probability.
//
// Posterior state is guarded by a per-arm mutex so concurrent outcome
// recording never loses updates. Reads during selection take the same lock;
// the critical section is two float loads, so contention is negligible.
type Arm struct {
	template *catalog.Template

	mu        sync.Mutex
	alpha     float64
	beta      float64
	pulls     int64
	rewardSum float64
}

// newArm creates an arm with the uniform Beta(1,1) prior.
func newArm(tmpl *catalog.Template) *Arm {
	return &Arm{
		template: tmpl,
		alpha:    1,
		beta:     1,
	}
}

// Template returns the template tracked by this arm.
func (a *Arm) Template() *catalog.Template {
	return a.template
}

// ID returns the template ID.
func (a *Arm) ID() string {
	return a.template.ID
}

// Category returns the template category.
func (a *Arm) Category() string {
	return a.template.Category
}

// Posterior returns the current Beta posterior shape parameters.
// Both values are always strictly positive.
func (a *Arm) Posterior() (alpha, beta float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alpha, a.beta
}

// Mean returns the posterior mean alpha/(alpha+beta).
func (a *Arm) Mean() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alpha / (a.alpha + a.beta)
}

// Pulls returns the number of outcomes observed for this arm.
func (a *Arm) Pulls() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pulls
}

// observe applies the Beta-Bernoulli conjugate update for a reward in [0,1]:
// alpha += reward, beta += (1 - reward). The caller is responsible for
// clamping the reward.
func (a *Arm) observe(reward float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alpha += reward
	a.beta += 1 - reward
	a.pulls++
	a.rewardSum += reward
}

// state returns a snapshot of the arm's posterior.
func (a *Arm) state() ArmState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ArmState{
		TemplateID: a.template.ID,
		Alpha:      a.alpha,
		Beta:       a.beta,
		Pulls:      a.pulls,
		RewardSum:  a.rewardSum,
	}
}

// restore overwrites the arm's posterior from a persisted snapshot.
// Non-positive shape parameters are rejected by the selector before this
// is called.
func (a *Arm) restore(s ArmState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alpha = s.Alpha
	a.beta = s.Beta
	a.pulls = s.Pulls
	a.rewardSum = s.RewardSum
}
