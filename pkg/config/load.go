package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// Defaults are applied first so that fields absent from the file keep their
// default values; the result is validated before being returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefaultConfig()

	// yaml.v3 merges mapping nodes into a pre-populated map, so a weight
	// table in the file would be mixed with the default panel instead of
	// replacing it. Clear the default table first; ApplyDefaults restores
	// it when the file defines none.
	cfg.Consensus.Weights = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention QUORUM_SECTION_FIELD (e.g., QUORUM_CONSENSUS_THRESHOLD) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Apply default values
//  2. Load YAML from file
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format QUORUM_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Catalog overrides
	if val := os.Getenv("QUORUM_CATALOG_PATH"); val != "" {
		cfg.Catalog.Path = val
	}
	if val := os.Getenv("QUORUM_CATALOG_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.Watch = b
		}
	}
	if val := os.Getenv("QUORUM_CATALOG_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Catalog.DebounceInterval = d
		}
	}

	// Selection overrides
	if val := os.Getenv("QUORUM_SELECTION_STRATEGY"); val != "" {
		cfg.Selection.Strategy = val
	}
	if val := os.Getenv("QUORUM_SELECTION_SEED"); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			cfg.Selection.Seed = u
		}
	}
	if val := os.Getenv("QUORUM_SELECTION_EPSILON"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Selection.Epsilon = f
		}
	}
	if val := os.Getenv("QUORUM_SELECTION_STATE_PATH"); val != "" {
		cfg.Selection.StatePath = val
	}
	if val := os.Getenv("QUORUM_SELECTION_SAVE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Selection.SaveInterval = d
		}
	}

	// Consensus overrides
	if val := os.Getenv("QUORUM_CONSENSUS_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Consensus.Threshold = f
		}
	}
	if val := os.Getenv("QUORUM_CONSENSUS_VALIDATOR_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Consensus.ValidatorTimeout = d
		}
	}

	// Evidence overrides
	if val := os.Getenv("QUORUM_EVIDENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Enabled = b
		}
	}
	if val := os.Getenv("QUORUM_EVIDENCE_BACKEND"); val != "" {
		cfg.Evidence.Backend = val
	}
	if val := os.Getenv("QUORUM_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLitePath = val
	}
	if val := os.Getenv("QUORUM_EVIDENCE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Evidence.Retention.Days = i
		}
	}
	if val := os.Getenv("QUORUM_EVIDENCE_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Evidence.Retention.MaxRecords = i
		}
	}
	if val := os.Getenv("QUORUM_EVIDENCE_PRUNE_SCHEDULE"); val != "" {
		cfg.Evidence.Retention.PruneSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("QUORUM_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("QUORUM_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("QUORUM_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
