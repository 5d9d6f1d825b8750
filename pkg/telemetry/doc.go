// Package telemetry groups the observability subsystems: structured logging
// and Prometheus metrics.
package telemetry
