package config

import (
	"fmt"
	"math"

	"github.com/robfig/cron/v3"
)

// weightSumTolerance is the permitted deviation of the weight sum from 1.0.
// It matches the tolerance enforced by the consensus validator at
// construction time.
const weightSumTolerance = 1e-9

// validStrategies are the recognized selection strategy names.
var validStrategies = map[string]bool{
	"thompson":       true,
	"epsilon-greedy": true,
	"ucb1":           true,
}

// validEvidenceBackends are the recognized evidence storage backends.
var validEvidenceBackends = map[string]bool{
	"memory": true,
	"sqlite": true,
}

// validLogLevels are the recognized log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats are the recognized log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Validate checks the configuration for errors. It returns the first
// problem found; configuration-time errors are fatal.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	// Catalog
	if cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.path cannot be empty")
	}

	// Selection
	if !validStrategies[cfg.Selection.Strategy] {
		return fmt.Errorf("selection.strategy %q is not recognized (valid: thompson, epsilon-greedy, ucb1)",
			cfg.Selection.Strategy)
	}
	if cfg.Selection.Epsilon < 0 || cfg.Selection.Epsilon > 1 {
		return fmt.Errorf("selection.epsilon must be in [0,1], got %g", cfg.Selection.Epsilon)
	}

	// Consensus
	if len(cfg.Consensus.Weights) == 0 {
		return fmt.Errorf("consensus.weights cannot be empty")
	}
	sum := 0.0
	for name, weight := range cfg.Consensus.Weights {
		if weight < 0 {
			return fmt.Errorf("consensus.weights[%q] must be non-negative, got %g", name, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("consensus.weights must sum to 1.0, got %g", sum)
	}
	if cfg.Consensus.Threshold <= 0 || cfg.Consensus.Threshold > 1 {
		return fmt.Errorf("consensus.threshold must be in (0,1], got %g", cfg.Consensus.Threshold)
	}
	if cfg.Consensus.ValidatorTimeout <= 0 {
		return fmt.Errorf("consensus.validator_timeout must be positive, got %s", cfg.Consensus.ValidatorTimeout)
	}

	// Evidence
	if cfg.Evidence.Enabled {
		if !validEvidenceBackends[cfg.Evidence.Backend] {
			return fmt.Errorf("evidence.backend %q is not recognized (valid: memory, sqlite)",
				cfg.Evidence.Backend)
		}
		if cfg.Evidence.Backend == "sqlite" && cfg.Evidence.SQLitePath == "" {
			return fmt.Errorf("evidence.sqlite_path cannot be empty when backend is sqlite")
		}
		if cfg.Evidence.Retention.Days < 0 {
			return fmt.Errorf("evidence.retention.days cannot be negative, got %d", cfg.Evidence.Retention.Days)
		}
		if cfg.Evidence.Retention.MaxRecords < 0 {
			return fmt.Errorf("evidence.retention.max_records cannot be negative, got %d", cfg.Evidence.Retention.MaxRecords)
		}
		if cfg.Evidence.Retention.PruneSchedule != "" {
			if _, err := cron.ParseStandard(cfg.Evidence.Retention.PruneSchedule); err != nil {
				return fmt.Errorf("evidence.retention.prune_schedule %q is not a valid cron expression: %w",
					cfg.Evidence.Retention.PruneSchedule, err)
			}
		}
	}

	// Telemetry
	if !validLogLevels[cfg.Telemetry.Logging.Level] {
		return fmt.Errorf("telemetry.logging.level %q is not recognized (valid: debug, info, warn, error)",
			cfg.Telemetry.Logging.Level)
	}
	if !validLogFormats[cfg.Telemetry.Logging.Format] {
		return fmt.Errorf("telemetry.logging.format %q is not recognized (valid: json, text)",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
