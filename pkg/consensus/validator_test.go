package consensus

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"acgs-hq/quorum/internal/synthmock"
)

func fourValidatorWeights() map[string]float64 {
	return map[string]float64{
		"primary":     0.4,
		"adversarial": 0.3,
		"formal":      0.2,
		"semantic":    0.1,
	}
}

func fourValidators(scores map[string]float64) []Validator {
	names := []string{"primary", "adversarial", "formal", "semantic"}
	panel := make([]Validator, 0, len(names))
	for _, name := range names {
		panel = append(panel, &synthmock.Validator{
			ValidatorName: name,
			ScoreValue:    scores[name],
		})
	}
	return panel
}

func TestNewWeightValidation(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]float64
		wantErr bool
	}{
		{
			name:    "valid weights",
			weights: fourValidatorWeights(),
			wantErr: false,
		},
		{
			name: "sum below one",
			weights: map[string]float64{
				"primary": 0.4, "adversarial": 0.3, "formal": 0.2, "semantic": 0.05,
			},
			wantErr: true,
		},
		{
			name: "sum above one",
			weights: map[string]float64{
				"primary": 0.5, "adversarial": 0.3, "formal": 0.2, "semantic": 0.1,
			},
			wantErr: true,
		},
		{
			name: "missing validator weight",
			weights: map[string]float64{
				"primary": 0.5, "adversarial": 0.3, "formal": 0.2,
			},
			wantErr: true,
		},
		{
			name: "negative weight",
			weights: map[string]float64{
				"primary": 0.6, "adversarial": 0.3, "formal": 0.2, "semantic": -0.1,
			},
			wantErr: true,
		},
		{
			name: "within tolerance",
			weights: map[string]float64{
				"primary": 0.4, "adversarial": 0.3, "formal": 0.2, "semantic": 0.1 + 1e-12,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(fourValidators(nil), Config{Weights: tt.weights}, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWeightConfig) {
					t.Errorf("New() error = %v, want ErrInvalidWeightConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("New() error = %v", err)
			}
		})
	}
}

func TestNewEmptyPanel(t *testing.T) {
	_, err := New(nil, Config{Weights: fourValidatorWeights()}, nil)
	if !errors.Is(err, ErrNoValidators) {
		t.Errorf("New(nil) error = %v, want ErrNoValidators", err)
	}
}

func TestNewDuplicateValidator(t *testing.T) {
	panel := []Validator{
		&synthmock.Validator{ValidatorName: "primary"},
		&synthmock.Validator{ValidatorName: "primary"},
	}
	_, err := New(panel, Config{Weights: map[string]float64{"primary": 1.0}}, nil)
	if !errors.Is(err, ErrDuplicateValidator) {
		t.Errorf("New() error = %v, want ErrDuplicateValidator", err)
	}
}

func TestNewWeightsCopied(t *testing.T) {
	weights := fourValidatorWeights()
	v, err := New(fourValidators(nil), Config{Weights: weights}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	weights["primary"] = 99.0

	if got := v.Weights()["primary"]; got != 0.4 {
		t.Errorf("weight mutated after construction: %g, want 0.4", got)
	}
}

func TestValidateAllAgree(t *testing.T) {
	v, err := New(fourValidators(map[string]float64{
		"primary": 0.95, "adversarial": 0.90, "formal": 1.0, "semantic": 0.92,
	}), Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// weighted = 0.95*0.4 + 0.90*0.3 + 1.0*0.2 + 0.92*0.1 = 0.942
	if math.Abs(result.WeightedScore-0.942) > 1e-9 {
		t.Errorf("WeightedScore = %g, want 0.942", result.WeightedScore)
	}
	if result.AgreementFactor != 0.90 {
		t.Errorf("AgreementFactor = %g, want 0.90", result.AgreementFactor)
	}
	// 0.942 * 0.90 = 0.8478 < 0.85: high average, but the dissenter drags
	// the gated value just under the default threshold.
	if result.Consensus {
		t.Error("Consensus = true, want false at 0.8478 vs threshold 0.85")
	}
	if len(result.Failures) != 0 {
		t.Errorf("Failures = %v, want none", result.Failures)
	}
}

func TestValidateBoundaryGating(t *testing.T) {
	// Every validator scores at least 0.9, yet the agreement factor keeps
	// the gated value under the 0.85 threshold: 0.927 * 0.9 = 0.8343.
	v, err := New(fourValidators(map[string]float64{
		"primary": 0.95, "adversarial": 0.90, "formal": 0.92, "semantic": 0.93,
	}), Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// weighted = 0.95*0.4 + 0.90*0.3 + 0.92*0.2 + 0.93*0.1 = 0.927
	if math.Abs(result.WeightedScore-0.927) > 1e-9 {
		t.Errorf("WeightedScore = %g, want 0.927", result.WeightedScore)
	}
	if result.AgreementFactor != 0.90 {
		t.Errorf("AgreementFactor = %g, want 0.90", result.AgreementFactor)
	}
	if result.Consensus {
		t.Error("Consensus = true, want false at 0.8343 vs threshold 0.85")
	}
}

func TestValidateConsensusReached(t *testing.T) {
	v, err := New(fourValidators(map[string]float64{
		"primary": 0.95, "adversarial": 0.93, "formal": 1.0, "semantic": 0.95,
	}), Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// weighted = 0.95*0.4 + 0.93*0.3 + 1.0*0.2 + 0.95*0.1 = 0.954
	// gated = 0.954 * 0.93 = 0.88722 >= 0.85
	if !result.Consensus {
		t.Errorf("Consensus = false, want true (weighted=%g agreement=%g)",
			result.WeightedScore, result.AgreementFactor)
	}
}

func TestValidateDissenterBlocksConsensus(t *testing.T) {
	// High weighted average, one strong dissenter. weighted ~= 0.929,
	// agreement = 0.9 is not the dissenter case; use a real dissenter.
	v, err := New(fourValidators(map[string]float64{
		"primary": 1.0, "adversarial": 1.0, "formal": 1.0, "semantic": 0.3,
	}), Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// weighted = 0.4 + 0.3 + 0.2 + 0.03 = 0.93, gated = 0.93*0.3 = 0.279
	if result.Consensus {
		t.Error("Consensus = true, want false with a 0.3 dissenter")
	}
	if math.Abs(result.WeightedScore-0.93) > 1e-9 {
		t.Errorf("WeightedScore = %g, want 0.93", result.WeightedScore)
	}
	if result.AgreementFactor != 0.3 {
		t.Errorf("AgreementFactor = %g, want 0.3", result.AgreementFactor)
	}
}

func TestValidateFailingValidatorScoresZero(t *testing.T) {
	panel := []Validator{
		&synthmock.Validator{ValidatorName: "primary", ScoreValue: 1.0},
		&synthmock.Validator{ValidatorName: "adversarial", ScoreValue: 1.0},
		&synthmock.Validator{ValidatorName: "formal", Err: errors.New("solver unavailable")},
		&synthmock.Validator{ValidatorName: "semantic", ScoreValue: 1.0},
	}
	v, err := New(panel, Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v, failures must be absorbed", err)
	}

	if result.Scores["formal"] != 0.0 {
		t.Errorf("failed validator score = %g, want 0.0", result.Scores["formal"])
	}
	if _, ok := result.Failures["formal"]; !ok {
		t.Errorf("Failures = %v, want formal entry", result.Failures)
	}
	// Any zero score forces agreement to 0 and consensus to false.
	if result.AgreementFactor != 0.0 {
		t.Errorf("AgreementFactor = %g, want 0.0", result.AgreementFactor)
	}
	if result.Consensus {
		t.Error("Consensus = true, want false when a validator scored 0.0")
	}
}

func TestValidatePanickingValidatorAbsorbed(t *testing.T) {
	panel := []Validator{
		&synthmock.Validator{ValidatorName: "primary", ScoreValue: 1.0},
		&synthmock.Validator{ValidatorName: "adversarial", Panics: true},
		&synthmock.Validator{ValidatorName: "formal", ScoreValue: 1.0},
		&synthmock.Validator{ValidatorName: "semantic", ScoreValue: 1.0},
	}
	v, err := New(panel, Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v, panics must be absorbed", err)
	}
	if result.Scores["adversarial"] != 0.0 {
		t.Errorf("panicked validator score = %g, want 0.0", result.Scores["adversarial"])
	}
	if result.Consensus {
		t.Error("Consensus = true, want false")
	}
}

func TestValidateTimeoutScoresZero(t *testing.T) {
	panel := []Validator{
		&synthmock.Validator{ValidatorName: "primary", ScoreValue: 1.0},
		&synthmock.Validator{ValidatorName: "adversarial", ScoreValue: 1.0, Delay: 200 * time.Millisecond},
		&synthmock.Validator{ValidatorName: "formal", ScoreValue: 1.0},
		&synthmock.Validator{ValidatorName: "semantic", ScoreValue: 1.0},
	}
	v, err := New(panel, Config{
		Weights:          fourValidatorWeights(),
		ValidatorTimeout: 20 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.Scores["adversarial"] != 0.0 {
		t.Errorf("timed-out validator score = %g, want 0.0", result.Scores["adversarial"])
	}
	if _, ok := result.Failures["adversarial"]; !ok {
		t.Errorf("Failures = %v, want adversarial entry", result.Failures)
	}
}

func TestValidateMalformedScores(t *testing.T) {
	tests := []struct {
		name  string
		score float64
	}{
		{name: "nan", score: math.NaN()},
		{name: "positive inf", score: math.Inf(1)},
		{name: "negative", score: -0.5},
		{name: "above one", score: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := []Validator{
				&synthmock.Validator{ValidatorName: "primary", ScoreValue: tt.score},
				&synthmock.Validator{ValidatorName: "adversarial", ScoreValue: 1.0},
				&synthmock.Validator{ValidatorName: "formal", ScoreValue: 1.0},
				&synthmock.Validator{ValidatorName: "semantic", ScoreValue: 1.0},
			}
			v, err := New(panel, Config{Weights: fourValidatorWeights()}, nil)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			result, err := v.Validate(context.Background(), "principle", "rule")
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if result.Scores["primary"] != 0.0 {
				t.Errorf("malformed score absorbed as %g, want 0.0", result.Scores["primary"])
			}
			if _, ok := result.Failures["primary"]; !ok {
				t.Errorf("Failures = %v, want primary entry", result.Failures)
			}
		})
	}
}

func TestValidateCancelledContext(t *testing.T) {
	v, err := New(fourValidators(nil), Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := v.Validate(ctx, "principle", "rule"); !errors.Is(err, context.Canceled) {
		t.Errorf("Validate() error = %v, want context.Canceled", err)
	}
}

func TestValidateCustomThreshold(t *testing.T) {
	v, err := New(fourValidators(map[string]float64{
		"primary": 0.9, "adversarial": 0.9, "formal": 0.9, "semantic": 0.9,
	}), Config{Weights: fourValidatorWeights(), Threshold: 0.5}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := v.Validate(context.Background(), "principle", "rule")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	// gated = 0.9 * 0.9 = 0.81 >= 0.5
	if !result.Consensus {
		t.Error("Consensus = false, want true at threshold 0.5")
	}
	if v.Threshold() != 0.5 {
		t.Errorf("Threshold() = %g, want 0.5", v.Threshold())
	}
}

func TestValidatorNames(t *testing.T) {
	v, err := New(fourValidators(nil), Config{Weights: fourValidatorWeights()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	names := v.ValidatorNames()
	want := []string{"primary", "adversarial", "formal", "semantic"}
	if len(names) != len(want) {
		t.Fatalf("ValidatorNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ValidatorNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
