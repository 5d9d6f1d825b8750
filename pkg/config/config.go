package config

import "time"

// Config is the root configuration structure for the quorum synthesis core.
// It contains all configuration sections for the template catalog, the
// bandit selector, the consensus validator, evidence storage, and telemetry.
type Config struct {
	// Catalog contains template catalog configuration including the catalog
	// file path and hot-reload settings.
	Catalog CatalogConfig `yaml:"catalog"`

	// Selection contains configuration for the bandit template selector
	// including strategy choice and state persistence.
	Selection SelectionConfig `yaml:"selection"`

	// Consensus contains configuration for the heterogeneous validator
	// including the weight table and consensus threshold.
	Consensus ConsensusConfig `yaml:"consensus"`

	// Evidence contains configuration for the synthesis audit trail
	// including backend selection and retention.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CatalogConfig contains configuration for the template catalog.
type CatalogConfig struct {
	// Path is the path to the template catalog YAML file.
	// Default: "./templates.yaml"
	Path string `yaml:"path"`

	// Watch enables hot reloading when the catalog file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload is triggered
	// after file changes.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// SelectionConfig contains configuration for the bandit template selector.
type SelectionConfig struct {
	// Strategy selects the bandit algorithm.
	// Options: "thompson", "epsilon-greedy", "ucb1"
	// Default: "thompson"
	Strategy string `yaml:"strategy"`

	// Seed seeds randomized strategies. Zero selects a nondeterministic
	// seed; fix it only for reproducing selection traces.
	// Default: 0
	Seed uint64 `yaml:"seed"`

	// Epsilon is the exploration probability for the epsilon-greedy
	// strategy.
	// Default: 0.1
	Epsilon float64 `yaml:"epsilon"`

	// ExplorationConstant scales the UCB1 exploration bonus.
	// Default: sqrt(2)
	ExplorationConstant float64 `yaml:"exploration_constant"`

	// StatePath is the SQLite file persisting arm posteriors across
	// restarts. Empty disables persistence.
	StatePath string `yaml:"state_path"`

	// SaveInterval is how often arm posteriors are snapshotted to the
	// state store.
	// Default: 30s
	SaveInterval time.Duration `yaml:"save_interval"`
}

// ConsensusConfig contains configuration for the heterogeneous validator.
type ConsensusConfig struct {
	// Weights maps validator name to its weight in the combined score.
	// Weights must cover every configured validator and sum to 1.0.
	Weights map[string]float64 `yaml:"weights"`

	// Threshold is the consensus gate applied to the product of weighted
	// score and agreement factor. Must be in (0,1].
	// Default: 0.85
	Threshold float64 `yaml:"threshold"`

	// ValidatorTimeout bounds each validator call; a timeout scores 0.0.
	// Default: 30s
	ValidatorTimeout time.Duration `yaml:"validator_timeout"`
}

// EvidenceConfig contains configuration for the synthesis audit trail.
type EvidenceConfig struct {
	// Enabled enables evidence recording.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/evidence.db"
	SQLitePath string `yaml:"sqlite_path"`

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention controls automatic pruning of old records.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls evidence retention pruning.
type RetentionConfig struct {
	// Days is the number of days to retain records. Zero disables
	// age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the total record count. Zero disables count-based
	// pruning.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning
	// (e.g., "0 3 * * *" for daily at 3 AM). Empty disables scheduling.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled enables metric collection.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the prometheus metric namespace.
	// Default: "quorum"
	Namespace string `yaml:"namespace"`

	// Subsystem is the prometheus metric subsystem.
	Subsystem string `yaml:"subsystem"`
}
