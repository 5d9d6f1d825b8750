package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"acgs-hq/quorum/pkg/config"
)

// SelectionMetrics tracks metrics related to bandit template selection.
//
// Metrics:
//   - quorum_selections_total: Selection count by template, strategy, category
//   - quorum_selection_errors_total: Selection error count by reason
//   - quorum_selection_reward: Observed reward distribution by template
//   - quorum_arm_posterior_mean: Current posterior mean per template
//   - quorum_arm_pulls: Outcomes observed per template
type SelectionMetrics struct {
	selectionsTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	reward          *prometheus.HistogramVec
	posteriorMean   *prometheus.GaugeVec
	armPulls        *prometheus.GaugeVec
}

// NewSelectionMetrics creates and registers selection metrics with the
// provided registry.
func NewSelectionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SelectionMetrics {
	sm := &SelectionMetrics{
		selectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "selections_total",
				Help:      "Total number of template selections",
			},
			[]string{"template", "strategy", "category"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "selection_errors_total",
				Help:      "Total number of selection errors",
			},
			[]string{"reason"},
		),

		reward: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "selection_reward",
				Help:      "Observed rewards recorded into the selector",
				Buckets:   prometheus.LinearBuckets(0.0, 0.1, 11), // 0.0 to 1.0
			},
			[]string{"template"},
		),

		posteriorMean: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "arm_posterior_mean",
				Help:      "Current Beta posterior mean per template arm",
			},
			[]string{"template"},
		),

		armPulls: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "arm_pulls",
				Help:      "Number of outcomes observed per template arm",
			},
			[]string{"template"},
		),
	}

	registry.MustRegister(
		sm.selectionsTotal,
		sm.errorsTotal,
		sm.reward,
		sm.posteriorMean,
		sm.armPulls,
	)

	return sm
}

// RecordSelection records a completed selection decision.
func (sm *SelectionMetrics) RecordSelection(template, strategy, category string) {
	if category == "" {
		category = "all"
	}
	sm.selectionsTotal.WithLabelValues(template, strategy, category).Inc()
}

// RecordError records a failed selection attempt.
func (sm *SelectionMetrics) RecordError(reason string) {
	sm.errorsTotal.WithLabelValues(reason).Inc()
}

// RecordOutcome records a reward observation and the arm's updated posterior.
func (sm *SelectionMetrics) RecordOutcome(template string, reward, posteriorMean float64, pulls int64) {
	sm.reward.WithLabelValues(template).Observe(reward)
	sm.posteriorMean.WithLabelValues(template).Set(posteriorMean)
	sm.armPulls.WithLabelValues(template).Set(float64(pulls))
}
