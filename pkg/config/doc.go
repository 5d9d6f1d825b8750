// Package config defines the root configuration for the quorum synthesis
// core and its loading pipeline: YAML file, defaults, environment variable
// overrides (QUORUM_SECTION_FIELD), then validation. Configuration-time
// errors are fatal by design; a misconfigured consensus weight table must
// never survive to the first request.
package config
