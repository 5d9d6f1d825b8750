// Package pipeline orchestrates the synthesis loop: bandit template
// selection, prompt rendering, rule generation, consensus validation, and
// the reward feedback that closes the loop.
package pipeline
