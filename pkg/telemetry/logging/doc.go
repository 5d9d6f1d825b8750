// Package logging configures the process-wide structured logger backed by
// log/slog with JSON or text output.
package logging
