package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"acgs-hq/quorum/pkg/catalog"
)

// Strategy defines the interface for selection strategies.
// This is defined here to avoid import cycles with the strategies package.
//
// Implementations must be thread-safe as they will be called concurrently
// from multiple goroutines handling simultaneous synthesis requests.
type Strategy interface {
	// SelectArm selects one arm from the eligible list. The eligible list
	// is already filtered for category; implementations must only consider
	// and return arms from that list.
	SelectArm(req *Request, eligible []*Arm) (*Arm, error)

	// Name returns the strategy name for logging and statistics.
	Name() string

	// Reset resets the strategy's internal state.
	Reset()
}

// Selector is the multi-armed-bandit template selector. It owns the arm
// statistics for every registered template and delegates the pick itself to
// a pluggable Strategy.
//
// A Selector is constructed once at service startup and injected into
// request handlers; there is no package-level state.
type Selector struct {
	mu     sync.RWMutex
	arms   map[string]*Arm
	order  []string // registration order, used for stable tie-breaking
	logger *slog.Logger

	strategy Strategy
	stats    *AtomicStats
}

// NewSelector creates a new template selector with the given strategy.
func NewSelector(strategy Strategy, logger *slog.Logger) (*Selector, error) {
	if strategy == nil {
		return nil, fmt.Errorf("selection strategy cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Selector{
		arms:     make(map[string]*Arm),
		logger:   logger.With("component", "selection.selector"),
		strategy: strategy,
		stats:    NewAtomicStats(),
	}, nil
}

// Register adds a template to the selector, initializing its arm statistics
// to the uniform Beta(1,1) prior. Registration is idempotent: registering an
// already-known template ID does not reset its accumulated statistics.
func (s *Selector) Register(tmpl *catalog.Template) error {
	if tmpl == nil {
		return fmt.Errorf("template cannot be nil")
	}
	if tmpl.ID == "" {
		return fmt.Errorf("template id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.arms[tmpl.ID]; ok {
		// Re-registration (e.g., catalog hot reload) swaps template content
		// but keeps the learned posterior.
		existing.template = tmpl
		s.logger.Debug("template re-registered, statistics preserved",
			"template_id", tmpl.ID,
			"category", tmpl.Category,
		)
		return nil
	}

	s.arms[tmpl.ID] = newArm(tmpl)
	s.order = append(s.order, tmpl.ID)

	s.logger.Info("template registered",
		"template_id", tmpl.ID,
		"category", tmpl.Category,
	)

	return nil
}

// RegisterCatalog registers every template in the catalog.
func (s *Selector) RegisterCatalog(c *catalog.Catalog) error {
	for _, tmpl := range c.Templates() {
		if err := s.Register(tmpl); err != nil {
			return fmt.Errorf("failed to register template %q: %w", tmpl.ID, err)
		}
	}
	return nil
}

// Select picks exactly one template for the given request.
//
// If the request carries a category, the eligible arm set is filtered to
// templates whose category matches exactly (case-sensitive) before the
// strategy runs; the strategy never sees, samples, or returns an arm
// outside that set. An empty eligible set yields NoEligibleTemplatesError.
func (s *Selector) Select(ctx context.Context, req *Request) (*Result, error) {
	s.stats.IncrementTotal()

	if ctx.Err() != nil {
		s.stats.IncrementErrors()
		return nil, ctx.Err()
	}
	if req == nil {
		req = &Request{}
	}

	eligible, registered := s.eligibleArms(req.Category)

	if len(registered) == 0 {
		s.stats.IncrementErrors()
		// Matches both ErrNoEligibleTemplates and ErrNoTemplatesRegistered,
		// so category-fallback callers catch the empty registry too.
		return nil, &NoEligibleTemplatesError{Category: req.Category}
	}

	if req.Category != "" {
		s.stats.IncrementCategoryFiltered()
	}

	if len(eligible) == 0 {
		s.stats.IncrementErrors()
		return nil, &NoEligibleTemplatesError{
			Category:            req.Category,
			RegisteredTemplates: registered,
		}
	}

	arm, err := s.strategy.SelectArm(req, eligible)
	if err != nil {
		s.stats.IncrementErrors()
		return nil, fmt.Errorf("strategy selection failed: %w", err)
	}

	s.stats.IncrementTemplate(arm.ID())
	s.stats.IncrementStrategy(s.strategy.Name())

	s.logger.Debug("template selected",
		"request_id", req.RequestID,
		"template_id", arm.ID(),
		"category", arm.Category(),
		"strategy", s.strategy.Name(),
		"eligible", len(eligible),
	)

	return &Result{
		TemplateID:    arm.ID(),
		Template:      arm.Template(),
		Strategy:      s.strategy.Name(),
		Reason:        fmt.Sprintf("selected by %s strategy", s.strategy.Name()),
		EligibleCount: len(eligible),
	}, nil
}

// RecordOutcome feeds an observed reward in [0,1] back into the arm for the
// given template. Rewards outside [0,1] are clamped and logged. Returns
// UnknownTemplateError if the template was never registered.
//
// The Beta posterior update (alpha += reward, beta += 1-reward) is applied
// atomically per-arm; every future Select call observes it.
func (s *Selector) RecordOutcome(templateID string, reward float64) error {
	s.mu.RLock()
	arm, ok := s.arms[templateID]
	s.mu.RUnlock()

	if !ok {
		s.stats.IncrementErrors()
		return &UnknownTemplateError{
			TemplateID:          templateID,
			RegisteredTemplates: s.TemplateIDs(),
		}
	}

	if reward < 0 || reward > 1 {
		s.logger.Warn("reward outside [0,1], clamping",
			"template_id", templateID,
			"reward", reward,
		)
		reward = clamp01(reward)
	}

	arm.observe(reward)
	s.stats.IncrementOutcomes()

	s.logger.Debug("outcome recorded",
		"template_id", templateID,
		"reward", reward,
		"pulls", arm.Pulls(),
	)

	return nil
}

// RecordSuccess records a binary outcome, normalized to reward 1.0 or 0.0.
func (s *Selector) RecordSuccess(templateID string, success bool) error {
	reward := 0.0
	if success {
		reward = 1.0
	}
	return s.RecordOutcome(templateID, reward)
}

// TemplateIDs returns the IDs of all registered templates in registration
// order.
func (s *Selector) TemplateIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// ArmStates returns a snapshot of every arm's posterior in registration
// order, suitable for persistence or introspection.
func (s *Selector) ArmStates() []ArmState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]ArmState, 0, len(s.order))
	for _, id := range s.order {
		states = append(states, s.arms[id].state())
	}
	return states
}

// RestoreArmStates overwrites arm posteriors from persisted snapshots.
// Snapshots for unregistered templates are skipped with a warning so a
// shrunken catalog does not block startup; snapshots with non-positive
// shape parameters are rejected.
func (s *Selector) RestoreArmStates(states []ArmState) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range states {
		arm, ok := s.arms[st.TemplateID]
		if !ok {
			s.logger.Warn("skipping persisted state for unregistered template",
				"template_id", st.TemplateID,
			)
			continue
		}
		if st.Alpha <= 0 || st.Beta <= 0 {
			return fmt.Errorf("invalid persisted posterior for template %q: alpha=%g beta=%g (must be > 0)",
				st.TemplateID, st.Alpha, st.Beta)
		}
		arm.restore(st)
	}
	return nil
}

// Strategy returns the name of the configured selection strategy.
func (s *Selector) Strategy() string {
	return s.strategy.Name()
}

// Stats returns current selection statistics.
func (s *Selector) Stats() *Stats {
	return s.stats.Snapshot()
}

// eligibleArms returns the arms matching the category filter (all arms when
// category is empty) in registration order, plus the full registered ID list
// for error reporting.
func (s *Selector) eligibleArms(category string) (eligible []*Arm, registered []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registered = make([]string, len(s.order))
	copy(registered, s.order)

	eligible = make([]*Arm, 0, len(s.order))
	for _, id := range s.order {
		arm := s.arms[id]
		if category != "" && arm.Category() != category {
			continue
		}
		eligible = append(eligible, arm)
	}
	return eligible, registered
}

// clamp01 clamps v to the closed interval [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
