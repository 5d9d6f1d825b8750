package config

import (
	"math"
	"time"
)

// Default configuration values.
const (
	DefaultCatalogPath      = "./templates.yaml"
	DefaultDebounceInterval = 100 * time.Millisecond

	DefaultStrategy     = "thompson"
	DefaultEpsilon      = 0.1
	DefaultSaveInterval = 30 * time.Second

	DefaultThreshold        = 0.85
	DefaultValidatorTimeout = 30 * time.Second

	DefaultEvidenceBackend = "sqlite"
	DefaultSQLitePath      = "data/evidence.db"
	DefaultAsyncBuffer     = 1000
	DefaultWriteTimeout    = 5 * time.Second
	DefaultRetentionDays   = 90
	DefaultPruneSchedule   = "0 3 * * *"

	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "quorum"
)

// DefaultWeights is the default validator weight table for the standard
// four-validator panel.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"primary":     0.4,
		"adversarial": 0.3,
		"formal":      0.2,
		"semantic":    0.1,
	}
}

// NewDefaultConfig returns a fully defaulted configuration.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Evidence.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued fields.
func ApplyDefaults(cfg *Config) {
	// Catalog
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.DebounceInterval <= 0 {
		cfg.Catalog.DebounceInterval = DefaultDebounceInterval
	}

	// Selection
	if cfg.Selection.Strategy == "" {
		cfg.Selection.Strategy = DefaultStrategy
	}
	if cfg.Selection.Epsilon <= 0 {
		cfg.Selection.Epsilon = DefaultEpsilon
	}
	if cfg.Selection.ExplorationConstant <= 0 {
		cfg.Selection.ExplorationConstant = math.Sqrt2
	}
	if cfg.Selection.SaveInterval <= 0 {
		cfg.Selection.SaveInterval = DefaultSaveInterval
	}

	// Consensus
	if cfg.Consensus.Weights == nil {
		cfg.Consensus.Weights = DefaultWeights()
	}
	if cfg.Consensus.Threshold <= 0 {
		cfg.Consensus.Threshold = DefaultThreshold
	}
	if cfg.Consensus.ValidatorTimeout <= 0 {
		cfg.Consensus.ValidatorTimeout = DefaultValidatorTimeout
	}

	// Evidence
	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = DefaultEvidenceBackend
	}
	if cfg.Evidence.SQLitePath == "" {
		cfg.Evidence.SQLitePath = DefaultSQLitePath
	}
	if cfg.Evidence.AsyncBuffer <= 0 {
		cfg.Evidence.AsyncBuffer = DefaultAsyncBuffer
	}
	if cfg.Evidence.WriteTimeout <= 0 {
		cfg.Evidence.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Evidence.Retention.Days == 0 {
		cfg.Evidence.Retention.Days = DefaultRetentionDays
	}
	if cfg.Evidence.Retention.PruneSchedule == "" {
		cfg.Evidence.Retention.PruneSchedule = DefaultPruneSchedule
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
