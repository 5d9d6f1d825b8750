package validators

import (
	"context"
	"errors"
	"math"
	"testing"

	"acgs-hq/quorum/internal/synthmock"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    float64
		wantErr bool
	}{
		{name: "bare number", reply: "0.85", want: 0.85},
		{name: "trailing period", reply: "0.85.", want: 0.85},
		{name: "prefixed", reply: "Score: 0.7", want: 0.7},
		{name: "integer one", reply: "1", want: 1.0},
		{name: "zero", reply: "0.0", want: 0.0},
		{name: "prose around number", reply: "I rate this rule 0.9 overall.", want: 0.9},
		{name: "no number", reply: "looks good to me", wantErr: true},
		{name: "above one", reply: "8.5", wantErr: true},
		{name: "negative", reply: "-0.5", wantErr: true},
		{name: "empty", reply: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.reply)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseScore(%q) error = %v, wantErr %v", tt.reply, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseScore(%q) = %g, want %g", tt.reply, got, tt.want)
			}
		})
	}
}

func TestLLMValidator(t *testing.T) {
	completer := &synthmock.Completer{Reply: "0.85"}
	v, err := NewLLMValidator("primary", RolePrimary, completer)
	if err != nil {
		t.Fatalf("NewLLMValidator() error = %v", err)
	}

	score, err := v.Score(context.Background(), "no pii without consent", "deny(X) :- pii(X).")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score != 0.85 {
		t.Errorf("Score() = %g, want 0.85", score)
	}
	if completer.LastPrompt == "" {
		t.Error("completer never received a prompt")
	}
}

func TestLLMValidatorConstruction(t *testing.T) {
	completer := &synthmock.Completer{Reply: "1"}

	if _, err := NewLLMValidator("", RolePrimary, completer); err == nil {
		t.Error("empty name should fail")
	}
	if _, err := NewLLMValidator("x", RolePrimary, nil); err == nil {
		t.Error("nil completer should fail")
	}
	if _, err := NewLLMValidator("x", Role("bogus"), completer); err == nil {
		t.Error("unknown role should fail")
	}
}

func TestLLMValidatorCompleterError(t *testing.T) {
	v, err := NewLLMValidator("primary", RolePrimary, &synthmock.Completer{Err: errors.New("api down")})
	if err != nil {
		t.Fatalf("NewLLMValidator() error = %v", err)
	}

	if _, err := v.Score(context.Background(), "p", "r"); err == nil {
		t.Error("Score() should propagate completer errors")
	}
}

func TestFormalValidatorScoring(t *testing.T) {
	tests := []struct {
		name   string
		issues []string
		want   float64
	}{
		{name: "clean", issues: nil, want: 1.0},
		{name: "one issue", issues: []string{"a"}, want: 0.75},
		{name: "two issues", issues: []string{"a", "b"}, want: 0.5},
		{name: "floor at zero", issues: []string{"a", "b", "c", "d", "e"}, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewFormalValidator("formal", &synthmock.Checker{Issues: tt.issues})
			if err != nil {
				t.Fatalf("NewFormalValidator() error = %v", err)
			}
			got, err := v.Score(context.Background(), "p", "r")
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Score() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestStaticChecker(t *testing.T) {
	tests := []struct {
		name       string
		rule       string
		wantIssues int
	}{
		{
			name:       "valid datalog",
			rule:       "deny(Action) :- involves_pii(Action), not consented(Action).",
			wantIssues: 0,
		},
		{
			name:       "valid rego",
			rule:       "package authz\n\ndefault allow = false\n\nallow { input.consented }",
			wantIssues: 0,
		},
		{
			name:       "empty rule",
			rule:       "   ",
			wantIssues: 1,
		},
		{
			name:       "unbalanced parens",
			rule:       "deny(Action :- involves_pii(Action).",
			wantIssues: 1,
		},
		{
			name:       "neither datalog nor rego",
			rule:       "just some text",
			wantIssues: 1,
		},
		{
			name:       "rego without decision",
			rule:       "package authz\nx = 1",
			wantIssues: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := StaticChecker{}.Check(context.Background(), tt.rule)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if len(issues) != tt.wantIssues {
				t.Errorf("Check() issues = %v, want %d", issues, tt.wantIssues)
			}
		})
	}
}

func TestSemanticValidator(t *testing.T) {
	embedder := &synthmock.Embedder{
		Vectors: map[string][]float64{
			"identical":  {1, 0, 0},
			"also same":  {1, 0, 0},
			"orthogonal": {0, 1, 0},
			"opposed":    {-1, 0, 0},
		},
	}
	v, err := NewSemanticValidator("semantic", embedder)
	if err != nil {
		t.Fatalf("NewSemanticValidator() error = %v", err)
	}

	tests := []struct {
		name            string
		principle, rule string
		want            float64
	}{
		{name: "identical vectors", principle: "identical", rule: "also same", want: 1.0},
		{name: "orthogonal clamps to zero", principle: "identical", rule: "orthogonal", want: 0.0},
		{name: "opposed clamps to zero", principle: "identical", rule: "opposed", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Score(context.Background(), tt.principle, tt.rule)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestSemanticValidatorErrors(t *testing.T) {
	t.Run("dimension mismatch", func(t *testing.T) {
		embedder := &synthmock.Embedder{
			Vectors: map[string][]float64{
				"a": {1, 0},
				"b": {1, 0, 0},
			},
		}
		v, err := NewSemanticValidator("semantic", embedder)
		if err != nil {
			t.Fatalf("NewSemanticValidator() error = %v", err)
		}
		if _, err := v.Score(context.Background(), "a", "b"); err == nil {
			t.Error("Score() should fail on dimension mismatch")
		}
	})

	t.Run("zero vector", func(t *testing.T) {
		embedder := &synthmock.Embedder{Default: []float64{0, 0, 0}}
		v, err := NewSemanticValidator("semantic", embedder)
		if err != nil {
			t.Fatalf("NewSemanticValidator() error = %v", err)
		}
		if _, err := v.Score(context.Background(), "a", "b"); err == nil {
			t.Error("Score() should fail on zero-magnitude vector")
		}
	})

	t.Run("embedder error", func(t *testing.T) {
		v, err := NewSemanticValidator("semantic", &synthmock.Embedder{Err: errors.New("backend down")})
		if err != nil {
			t.Fatalf("NewSemanticValidator() error = %v", err)
		}
		if _, err := v.Score(context.Background(), "a", "b"); err == nil {
			t.Error("Score() should propagate embedder errors")
		}
	})
}
