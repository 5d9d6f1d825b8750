// Package statestore persists bandit arm posteriors so learned template
// performance survives restarts. A SQLite backend serves durable
// deployments; the memory backend serves tests.
package statestore
