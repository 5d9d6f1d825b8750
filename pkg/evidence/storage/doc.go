// Package storage provides synthesis record persistence backends: an
// in-memory store for tests and a SQLite store for single-instance
// deployments.
package storage
