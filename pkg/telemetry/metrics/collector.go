package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"acgs-hq/quorum/pkg/config"
)

// Collector manages all Prometheus metrics for the synthesis core. It owns
// the registry and provides a unified interface for recording selection and
// consensus metrics.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	selectionMetrics *SelectionMetrics
	consensusMetrics *ConsensusMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "quorum"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.selectionMetrics = NewSelectionMetrics(cfg, registry)
	c.consensusMetrics = NewConsensusMetrics(cfg, registry)

	return c
}

// Selection returns the selection metric group.
func (c *Collector) Selection() *SelectionMetrics {
	return c.selectionMetrics
}

// Consensus returns the consensus metric group.
func (c *Collector) Consensus() *ConsensusMetrics {
	return c.consensusMetrics
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
