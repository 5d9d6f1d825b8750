package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"acgs-hq/quorum/pkg/evidence"
)

// Config contains configuration for the evidence recorder.
type Config struct {
	// Enabled enables evidence recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing evidence to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxFieldLength is the maximum length for text excerpts before truncation.
	// Default: 200
	MaxFieldLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		AsyncBuffer:    1000,
		WriteTimeout:   5 * time.Second,
		MaxFieldLength: 200,
	}
}

// Outcome carries the raw result of one synthesis attempt. The recorder
// hashes and truncates the free-text fields before anything is persisted,
// so full principle and rule text never reaches storage.
type Outcome struct {
	RequestID string

	RequestTime    time.Time
	SelectionTime  time.Time
	ValidationTime time.Time

	TemplateID       string
	TemplateCategory string
	Strategy         string
	EligibleCount    int

	Principle    string
	TargetFormat string
	SafetyLevel  string

	Rule string

	ValidatorScores   map[string]float64
	ValidatorFailures map[string]string
	WeightedScore     float64
	AgreementFactor   float64
	Consensus         bool

	Reward         float64
	RewardRecorded bool

	GenerationLatency time.Duration
	ValidationLatency time.Duration

	Err       error
	ErrorType string
}

// Recorder persists synthesis evidence asynchronously so the pipeline never
// blocks on storage writes.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	recordChan chan *evidence.SynthesisRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a new evidence recorder with the provided storage
// backend and configuration.
func NewRecorder(storage evidence.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *evidence.SynthesisRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "evidence.recorder"),
	}

	// Background worker drains the channel
	r.wg.Add(1)
	go r.worker()

	r.logger.Info("evidence recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds a synthesis record from the outcome and enqueues it for
// async writing. It returns immediately; a full channel drops the record
// after WriteTimeout.
func (r *Recorder) Record(ctx context.Context, outcome *Outcome) error {
	if !r.config.Enabled {
		return nil
	}

	record := r.buildRecord(outcome)

	// The buffered channel stays open after shutdown, so a plain select
	// could still enqueue into a drained recorder. Check done first.
	select {
	case <-r.done:
		r.logger.Warn("recorder shut down, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return &evidence.RecorderError{RecordID: record.ID, Cause: context.Canceled}
	default:
	}

	select {
	case r.recordChan <- record:
		r.logger.Debug("synthesis record enqueued",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"consensus", record.Consensus,
		)
	case <-ctx.Done():
		return &evidence.RecorderError{RecordID: record.ID, Cause: ctx.Err()}
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("evidence channel full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return &evidence.RecorderError{RecordID: record.ID, Cause: context.DeadlineExceeded}
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return &evidence.RecorderError{RecordID: record.ID, Cause: context.Canceled}
	}

	return nil
}

// Close gracefully shuts down the recorder by draining the async channel and
// waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down evidence recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("evidence recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the evidence channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining evidence channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("evidence channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single synthesis record to storage.
func (r *Recorder) writeRecord(record *evidence.SynthesisRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store synthesis record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Info("evidence recorded",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"template_id", record.TemplateID,
		"consensus", record.Consensus,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow evidence write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// buildRecord converts an outcome into a storable synthesis record, hashing
// the principle and rule text and truncating excerpts.
func (r *Recorder) buildRecord(outcome *Outcome) *evidence.SynthesisRecord {
	record := &evidence.SynthesisRecord{
		ID:        uuid.New().String(),
		RequestID: outcome.RequestID,

		RequestTime:    outcome.RequestTime,
		SelectionTime:  outcome.SelectionTime,
		ValidationTime: outcome.ValidationTime,
		RecordedTime:   time.Now(),

		TemplateID:       outcome.TemplateID,
		TemplateCategory: outcome.TemplateCategory,
		Strategy:         outcome.Strategy,
		EligibleCount:    outcome.EligibleCount,

		PrincipleHash:    HashString(outcome.Principle),
		PrincipleExcerpt: TruncateString(outcome.Principle, r.config.MaxFieldLength),
		TargetFormat:     outcome.TargetFormat,
		SafetyLevel:      outcome.SafetyLevel,

		RuleHash:    HashString(outcome.Rule),
		RuleExcerpt: TruncateString(outcome.Rule, r.config.MaxFieldLength),

		ValidatorScores:   outcome.ValidatorScores,
		ValidatorFailures: outcome.ValidatorFailures,
		WeightedScore:     outcome.WeightedScore,
		AgreementFactor:   outcome.AgreementFactor,
		Consensus:         outcome.Consensus,

		Reward:         outcome.Reward,
		RewardRecorded: outcome.RewardRecorded,

		GenerationLatency: outcome.GenerationLatency,
		ValidationLatency: outcome.ValidationLatency,

		ErrorType: outcome.ErrorType,
	}

	if outcome.Err != nil {
		record.Error = outcome.Err.Error()
	}

	return record
}
