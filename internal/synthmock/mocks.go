// Package synthmock provides shared test doubles for the synthesis
// pipeline: validators, generators, and the LLM/embedding/checker ports.
package synthmock

import (
	"context"
	"sync/atomic"
	"time"
)

// Validator is a configurable consensus.Validator test double.
type Validator struct {
	// ValidatorName is returned by Name().
	ValidatorName string

	// ScoreValue is the score returned on success.
	ScoreValue float64

	// Err, when non-nil, is returned instead of a score.
	Err error

	// Delay is slept before responding, to exercise timeouts.
	Delay time.Duration

	// Panics makes Score panic instead of returning.
	Panics bool

	// Calls counts Score invocations.
	Calls atomic.Int64
}

// Score implements consensus.Validator.
func (v *Validator) Score(ctx context.Context, principle, rule string) (float64, error) {
	v.Calls.Add(1)

	if v.Panics {
		panic("mock validator panic")
	}

	if v.Delay > 0 {
		select {
		case <-time.After(v.Delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	if v.Err != nil {
		return 0, v.Err
	}
	return v.ScoreValue, nil
}

// Name implements consensus.Validator.
func (v *Validator) Name() string {
	return v.ValidatorName
}

// Generator is a configurable pipeline.Generator test double.
type Generator struct {
	// Rule is the rule text returned on success.
	Rule string

	// Err, when non-nil, is returned instead of a rule.
	Err error

	// LastPrompt records the most recent prompt passed to Generate.
	LastPrompt string

	// Calls counts Generate invocations.
	Calls atomic.Int64
}

// Generate implements pipeline.Generator.
func (g *Generator) Generate(_ context.Context, prompt, _ string) (string, error) {
	g.Calls.Add(1)
	g.LastPrompt = prompt

	if g.Err != nil {
		return "", g.Err
	}
	return g.Rule, nil
}

// Completer is a validators.Completer test double returning a fixed reply.
type Completer struct {
	// Reply is the completion text returned on success.
	Reply string

	// Err, when non-nil, is returned instead of a reply.
	Err error

	// LastPrompt records the most recent prompt.
	LastPrompt string
}

// Complete implements validators.Completer.
func (c *Completer) Complete(_ context.Context, prompt string) (string, error) {
	c.LastPrompt = prompt
	if c.Err != nil {
		return "", c.Err
	}
	return c.Reply, nil
}

// Embedder is a validators.Embedder test double mapping texts to fixed
// vectors.
type Embedder struct {
	// Vectors maps input text to its embedding. Missing texts fall back to
	// Default.
	Vectors map[string][]float64

	// Default is returned for texts absent from Vectors.
	Default []float64

	// Err, when non-nil, is returned instead of a vector.
	Err error
}

// Embed implements validators.Embedder.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if vec, ok := e.Vectors[text]; ok {
		return vec, nil
	}
	return e.Default, nil
}

// Checker is a validators.Checker test double reporting fixed issues.
type Checker struct {
	// Issues are the findings returned on success.
	Issues []string

	// Err, when non-nil, is returned instead of findings.
	Err error
}

// Check implements validators.Checker.
func (c *Checker) Check(_ context.Context, _ string) ([]string, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Issues, nil
}
