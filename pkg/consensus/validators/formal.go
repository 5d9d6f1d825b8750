package validators

import (
	"context"
	"fmt"
	"strings"
)

// Checker is the port to a formal verification backend (an SMT solver or a
// rule-language analyzer). It reports structural or logical issues found in
// a generated rule.
type Checker interface {
	// Check analyzes the rule and returns the issues found. An empty slice
	// means the rule passed all checks.
	Check(ctx context.Context, rule string) ([]string, error)
}

// FormalValidator scores a rule by the number of issues its checker reports.
// Each issue costs issuePenalty; a clean rule scores 1.0.
type FormalValidator struct {
	name    string
	checker Checker
}

// issuePenalty is the score deduction per reported issue.
const issuePenalty = 0.25

// NewFormalValidator creates a validator backed by a formal checker.
func NewFormalValidator(name string, checker Checker) (*FormalValidator, error) {
	if name == "" {
		return nil, fmt.Errorf("validator name cannot be empty")
	}
	if checker == nil {
		return nil, fmt.Errorf("checker cannot be nil")
	}
	return &FormalValidator{name: name, checker: checker}, nil
}

// Score runs the checker and converts its findings into a [0,1] score.
func (v *FormalValidator) Score(ctx context.Context, principle, rule string) (float64, error) {
	issues, err := v.checker.Check(ctx, rule)
	if err != nil {
		return 0, fmt.Errorf("formal check failed: %w", err)
	}

	score := 1.0 - float64(len(issues))*issuePenalty
	if score < 0 {
		score = 0
	}
	return score, nil
}

// Name returns the validator name.
func (v *FormalValidator) Name() string {
	return v.name
}

// StaticChecker is a built-in Checker performing structural sanity checks on
// generated Datalog and Rego rules. It is a cheap first line of defense; a
// real solver backend can replace it without touching the validator.
type StaticChecker struct{}

// Check reports structural problems in the rule text.
func (StaticChecker) Check(_ context.Context, rule string) ([]string, error) {
	var issues []string

	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return []string{"rule is empty"}, nil
	}

	if !isBalanced(trimmed, '(', ')') {
		issues = append(issues, "unbalanced parentheses")
	}
	if !isBalanced(trimmed, '{', '}') {
		issues = append(issues, "unbalanced braces")
	}
	if !isBalanced(trimmed, '[', ']') {
		issues = append(issues, "unbalanced brackets")
	}

	// A rule body must look like Datalog (":-" clauses) or Rego
	// ("package" plus allow/deny/violation definitions).
	isDatalog := strings.Contains(trimmed, ":-")
	isRego := strings.Contains(trimmed, "package ")
	if !isDatalog && !isRego {
		issues = append(issues, "no datalog clause or rego package found")
	}
	if isRego && !containsAny(trimmed, "allow", "deny", "violation", "default") {
		issues = append(issues, "rego rule defines no decision")
	}

	return issues, nil
}

// isBalanced reports whether open/close pairs nest correctly.
func isBalanced(s string, open, close rune) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case open:
			depth++
		case close:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
