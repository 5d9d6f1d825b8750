package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"acgs-hq/quorum/pkg/config"
)

// ConsensusMetrics tracks metrics related to heterogeneous validation.
//
// Metrics:
//   - quorum_validations_total: Validation count by verdict
//   - quorum_validator_score: Per-validator score distribution
//   - quorum_validator_failures_total: Validator failure count by name, reason
//   - quorum_validation_duration_seconds: Validation fan-out duration
type ConsensusMetrics struct {
	validationsTotal   *prometheus.CounterVec
	validatorScore     *prometheus.HistogramVec
	validatorFailures  *prometheus.CounterVec
	validationDuration prometheus.Histogram
}

// NewConsensusMetrics creates and registers consensus metrics with the
// provided registry.
func NewConsensusMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConsensusMetrics {
	cm := &ConsensusMetrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total number of consensus validations",
			},
			[]string{"verdict"},
		),

		validatorScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validator_score",
				Help:      "Per-validator raw scores",
				Buckets:   prometheus.LinearBuckets(0.0, 0.1, 11), // 0.0 to 1.0
			},
			[]string{"validator"},
		),

		validatorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validator_failures_total",
				Help:      "Total number of validator failures absorbed as zero scores",
			},
			[]string{"validator", "reason"},
		),

		validationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Duration of the consensus validation fan-out",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
		),
	}

	registry.MustRegister(
		cm.validationsTotal,
		cm.validatorScore,
		cm.validatorFailures,
		cm.validationDuration,
	)

	return cm
}

// RecordValidation records a completed consensus validation.
func (cm *ConsensusMetrics) RecordValidation(consensus bool, scores map[string]float64, failures map[string]string, duration time.Duration) {
	verdict := "rejected"
	if consensus {
		verdict = "accepted"
	}
	cm.validationsTotal.WithLabelValues(verdict).Inc()

	for name, score := range scores {
		cm.validatorScore.WithLabelValues(name).Observe(score)
	}
	for name, reason := range failures {
		cm.validatorFailures.WithLabelValues(name, reason).Inc()
	}

	cm.validationDuration.Observe(duration.Seconds())
}
