package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"acgs-hq/quorum/pkg/catalog"
	"acgs-hq/quorum/pkg/consensus"
	"acgs-hq/quorum/pkg/evidence/recorder"
	"acgs-hq/quorum/pkg/selection"
	"acgs-hq/quorum/pkg/telemetry/metrics"
)

// Engine orchestrates one full synthesis pass: template selection, prompt
// rendering, rule generation, consensus validation, and the reward feedback
// into the selector. Evidence recording and metrics are optional.
type Engine struct {
	selector  *selection.Selector
	validator *consensus.HeterogeneousValidator
	generator Generator
	recorder  *recorder.Recorder
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// Option configures optional engine dependencies.
type Option func(*Engine)

// WithRecorder attaches an evidence recorder to the engine.
func WithRecorder(r *recorder.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithMetrics attaches a metrics collector to the engine.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// NewEngine creates a synthesis engine.
func NewEngine(selector *selection.Selector, validator *consensus.HeterogeneousValidator, generator Generator, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if selector == nil {
		return nil, fmt.Errorf("selector cannot be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		selector:  selector,
		validator: validator,
		generator: generator,
		logger:    logger.With("component", "pipeline.engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Synthesize runs one full synthesis pass for the request.
//
// A generation failure aborts before validation: the arm statistics stay
// untouched and the failure is recorded as evidence. A completed validation
// always feeds the reward (weighted score times agreement factor) back into
// the selector, whether or not consensus was reached.
func (e *Engine) Synthesize(ctx context.Context, req *SynthesisRequest) (*SynthesisResult, error) {
	if req == nil {
		return nil, fmt.Errorf("synthesis request cannot be nil")
	}

	requestID := uuid.New().String()
	requestTime := time.Now()

	logger := e.logger.With("request_id", requestID)

	sel, err := e.selector.Select(ctx, &selection.Request{
		RequestID:           requestID,
		Category:            req.Category,
		SafetyLevel:         req.SafetyLevel,
		TargetFormat:        req.TargetFormat,
		PrincipleComplexity: req.PrincipleComplexity,
	})
	if err != nil {
		logger.Error("template selection failed", "error", err)
		if e.metrics != nil {
			e.metrics.Selection().RecordError(selectionErrorReason(err))
		}
		e.record(ctx, &recorder.Outcome{
			RequestID:    requestID,
			RequestTime:  requestTime,
			Strategy:     e.selector.Strategy(),
			Principle:    req.Principle,
			TargetFormat: req.TargetFormat,
			SafetyLevel:  req.SafetyLevel,
			Err:          err,
			ErrorType:    "selection",
		})
		return nil, fmt.Errorf("template selection failed: %w", err)
	}
	selectionTime := time.Now()

	logger = logger.With("template_id", sel.TemplateID)
	if e.metrics != nil {
		e.metrics.Selection().RecordSelection(sel.TemplateID, sel.Strategy, req.Category)
	}

	prompt, err := catalog.Render(sel.Template, &catalog.RenderInput{
		Principle:    req.Principle,
		TargetFormat: req.TargetFormat,
		SafetyLevel:  req.SafetyLevel,
		Context:      req.Context,
	})
	if err != nil {
		logger.Error("prompt rendering failed", "error", err)
		e.recordAborted(ctx, requestID, requestTime, selectionTime, sel, req, err, "render")
		return nil, fmt.Errorf("prompt rendering failed: %w", err)
	}

	genStart := time.Now()
	rule, err := e.generator.Generate(ctx, prompt, req.TargetFormat)
	genLatency := time.Since(genStart)
	if err != nil {
		logger.Error("rule generation failed",
			"error", err,
			"generation_ms", genLatency.Milliseconds(),
		)
		e.recordAborted(ctx, requestID, requestTime, selectionTime, sel, req, err, "generation")
		return nil, fmt.Errorf("rule generation failed: %w", err)
	}

	validation, err := e.validator.Validate(ctx, req.Principle, rule)
	if err != nil {
		// Only a cancelled parent context reaches here.
		logger.Error("consensus validation aborted", "error", err)
		e.recordAborted(ctx, requestID, requestTime, selectionTime, sel, req, err, "validation")
		return nil, fmt.Errorf("consensus validation failed: %w", err)
	}
	validationTime := time.Now()

	reward := validation.WeightedScore * validation.AgreementFactor
	if recErr := e.selector.RecordOutcome(sel.TemplateID, reward); recErr != nil {
		logger.Warn("failed to record outcome", "error", recErr)
	}

	if e.metrics != nil {
		states := e.selector.ArmStates()
		for _, st := range states {
			if st.TemplateID == sel.TemplateID {
				e.metrics.Selection().RecordOutcome(sel.TemplateID, reward, st.Mean(), st.Pulls)
				break
			}
		}
		e.metrics.Consensus().RecordValidation(
			validation.Consensus, validation.Scores, validation.Failures, validation.Duration)
	}

	e.record(ctx, &recorder.Outcome{
		RequestID:         requestID,
		RequestTime:       requestTime,
		SelectionTime:     selectionTime,
		ValidationTime:    validationTime,
		TemplateID:        sel.TemplateID,
		TemplateCategory:  sel.Template.Category,
		Strategy:          sel.Strategy,
		EligibleCount:     sel.EligibleCount,
		Principle:         req.Principle,
		TargetFormat:      req.TargetFormat,
		SafetyLevel:       req.SafetyLevel,
		Rule:              rule,
		ValidatorScores:   validation.Scores,
		ValidatorFailures: validation.Failures,
		WeightedScore:     validation.WeightedScore,
		AgreementFactor:   validation.AgreementFactor,
		Consensus:         validation.Consensus,
		Reward:            reward,
		RewardRecorded:    true,
		GenerationLatency: genLatency,
		ValidationLatency: validation.Duration,
	})

	logger.Info("synthesis completed",
		"strategy", sel.Strategy,
		"consensus", validation.Consensus,
		"weighted_score", validation.WeightedScore,
		"agreement_factor", validation.AgreementFactor,
		"reward", reward,
	)

	return &SynthesisResult{
		RequestID:         requestID,
		TemplateID:        sel.TemplateID,
		Strategy:          sel.Strategy,
		Rule:              rule,
		Validation:        validation,
		Reward:            reward,
		Accepted:          validation.Consensus,
		GenerationLatency: genLatency,
		ValidationLatency: validation.Duration,
	}, nil
}

// recordAborted records evidence for a synthesis that failed after selection
// but before a reward could be recorded. The arm statistics stay untouched.
func (e *Engine) recordAborted(ctx context.Context, requestID string, requestTime, selectionTime time.Time, sel *selection.Result, req *SynthesisRequest, cause error, errorType string) {
	e.record(ctx, &recorder.Outcome{
		RequestID:        requestID,
		RequestTime:      requestTime,
		SelectionTime:    selectionTime,
		TemplateID:       sel.TemplateID,
		TemplateCategory: sel.Template.Category,
		Strategy:         sel.Strategy,
		EligibleCount:    sel.EligibleCount,
		Principle:        req.Principle,
		TargetFormat:     req.TargetFormat,
		SafetyLevel:      req.SafetyLevel,
		RewardRecorded:   false,
		Err:              cause,
		ErrorType:        errorType,
	})
}

// record forwards an outcome to the evidence recorder when one is attached.
func (e *Engine) record(ctx context.Context, outcome *recorder.Outcome) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, outcome); err != nil {
		e.logger.Warn("evidence recording failed",
			"request_id", outcome.RequestID,
			"error", err,
		)
	}
}

// selectionErrorReason maps selection errors to a low-cardinality metric label.
func selectionErrorReason(err error) string {
	switch {
	// Empty-registry errors match both sentinels; check the narrower one
	// first to keep the labels distinct.
	case errors.Is(err, selection.ErrNoTemplatesRegistered):
		return "no_templates_registered"
	case errors.Is(err, selection.ErrNoEligibleTemplates):
		return "no_eligible_templates"
	default:
		return "other"
	}
}
