package consensus

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// weightSumTolerance is the permitted deviation of the weight sum from 1.0.
const weightSumTolerance = 1e-9

// HeterogeneousValidator runs a policy-synthesis candidate through several
// independent validators concurrently and combines their scores into a
// weighted, agreement-gated verdict.
//
// Construction validates the weight table; a constructed validator can
// always produce a well-formed Result.
type HeterogeneousValidator struct {
	validators []Validator
	weights    map[string]float64
	threshold  float64
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a heterogeneous validator over the given panel.
//
// It fails with InvalidWeightConfigError when the weight table does not
// assign a non-negative weight to every validator or does not sum to 1.0
// within 1e-9.
func New(validators []Validator, cfg Config, logger *slog.Logger) (*HeterogeneousValidator, error) {
	if len(validators) == 0 {
		return nil, ErrNoValidators
	}
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, 0, len(validators))
	seen := make(map[string]bool, len(validators))
	for _, v := range validators {
		if seen[v.Name()] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateValidator, v.Name())
		}
		seen[v.Name()] = true
		names = append(names, v.Name())
	}

	sum := 0.0
	for _, v := range validators {
		weight, ok := cfg.Weights[v.Name()]
		if !ok {
			return nil, &InvalidWeightConfigError{
				Reason:     fmt.Sprintf("validator %q has no weight", v.Name()),
				Validators: names,
			}
		}
		if weight < 0 {
			return nil, &InvalidWeightConfigError{
				Reason:     fmt.Sprintf("validator %q has negative weight %g", v.Name(), weight),
				Validators: names,
			}
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, &InvalidWeightConfigError{
			Reason:     "weights must sum to 1.0",
			Sum:        sum,
			Validators: names,
		}
	}

	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.85
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("consensus threshold must be in (0,1], got %g", cfg.Threshold)
	}

	timeout := cfg.ValidatorTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Copy the weight table so later config mutation cannot skew consensus.
	weights := make(map[string]float64, len(validators))
	for _, v := range validators {
		weights[v.Name()] = cfg.Weights[v.Name()]
	}

	return &HeterogeneousValidator{
		validators: validators,
		weights:    weights,
		threshold:  threshold,
		timeout:    timeout,
		logger:     logger.With("component", "consensus.validator"),
	}, nil
}

// Validate scores the (principle, rule) pair with every validator in
// parallel and combines the results.
//
// A validator that fails, times out, or returns a malformed score
// contributes 0.0 for this run; the failure is logged and reported in
// Result.Failures, never propagated. Validate itself only errors when the
// parent context is already cancelled.
func (h *HeterogeneousValidator) Validate(ctx context.Context, principle, rule string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	type outcome struct {
		name    string
		score   float64
		failure string
	}

	outcomes := make([]outcome, len(h.validators))
	var wg sync.WaitGroup

	for i, v := range h.validators {
		wg.Add(1)
		go func(i int, v Validator) {
			defer wg.Done()

			vctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			score, err := h.scoreOne(vctx, v, principle, rule)
			out := outcome{name: v.Name(), score: score}
			if err != nil {
				out.score = 0.0
				out.failure = err.Error()
			}
			outcomes[i] = out
		}(i, v)
	}

	wg.Wait()

	scores := make(map[string]float64, len(outcomes))
	failures := make(map[string]string)
	weighted := 0.0
	agreement := 1.0

	for _, out := range outcomes {
		scores[out.name] = out.score
		weighted += out.score * h.weights[out.name]
		if out.score < agreement {
			agreement = out.score
		}
		if out.failure != "" {
			failures[out.name] = out.failure
		}
	}

	result := &Result{
		Scores:          scores,
		WeightedScore:   weighted,
		AgreementFactor: agreement,
		Consensus:       weighted*agreement >= h.threshold,
		Duration:        time.Since(start),
	}
	if len(failures) > 0 {
		result.Failures = failures
	}

	h.logger.Debug("consensus validation completed",
		"weighted_score", result.WeightedScore,
		"agreement_factor", result.AgreementFactor,
		"consensus", result.Consensus,
		"failures", len(failures),
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// scoreOne runs a single validator, converting panics, errors, timeouts and
// malformed scores into errors for the caller to absorb.
func (h *HeterogeneousValidator) scoreOne(ctx context.Context, v Validator, principle, rule string) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("validator panicked",
				"validator", v.Name(),
				"panic", r,
			)
			score, err = 0.0, fmt.Errorf("panic: %v", r)
		}
	}()

	score, err = v.Score(ctx, principle, rule)
	if err != nil {
		reason := "error"
		if ctx.Err() == context.DeadlineExceeded {
			reason = "timeout"
		}
		h.logger.Warn("validator failed, scoring 0.0",
			"validator", v.Name(),
			"reason", reason,
			"error", err,
		)
		return 0.0, fmt.Errorf("%s: %w", reason, err)
	}

	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 1 {
		h.logger.Warn("validator returned malformed score, scoring 0.0",
			"validator", v.Name(),
			"score", score,
		)
		return 0.0, fmt.Errorf("malformed score %g", score)
	}

	return score, nil
}

// Threshold returns the configured consensus threshold.
func (h *HeterogeneousValidator) Threshold() float64 {
	return h.threshold
}

// Weights returns a copy of the validator weight table.
func (h *HeterogeneousValidator) Weights() map[string]float64 {
	weights := make(map[string]float64, len(h.weights))
	for name, weight := range h.weights {
		weights[name] = weight
	}
	return weights
}

// ValidatorNames returns the names of the registered validators in panel
// order.
func (h *HeterogeneousValidator) ValidatorNames() []string {
	names := make([]string, 0, len(h.validators))
	for _, v := range h.validators {
		names = append(names, v.Name())
	}
	return names
}
