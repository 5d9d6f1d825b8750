// Package validators provides the standard validator panel for consensus
// validation: LLM-backed reviewers (primary and adversarial roles), a
// formal structural checker for generated rule code, and an
// embedding-similarity validator. Each wraps an opaque backend port so
// tests can substitute stubs returning fixed scores.
package validators
