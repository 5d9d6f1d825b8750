package validators

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Completer is the port to an LLM completion backend. The validator treats
// it as an opaque function from prompt to completion text.
type Completer interface {
	// Complete returns the model's completion for the given prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Role selects the reviewing stance an LLM validator takes.
type Role string

const (
	// RolePrimary reviews whether the rule faithfully implements the
	// principle.
	RolePrimary Role = "primary"

	// RoleAdversarial actively searches for loopholes, bypasses, and
	// unintended permissions in the rule.
	RoleAdversarial Role = "adversarial"
)

// rolePrompts maps each role to its review instruction.
var rolePrompts = map[Role]string{
	RolePrimary: "You are reviewing a machine-generated governance rule. " +
		"Rate from 0.0 to 1.0 how faithfully the rule implements the principle. " +
		"Respond with only the number.",
	RoleAdversarial: "You are an adversarial reviewer of a machine-generated governance rule. " +
		"Search for loopholes, bypasses, and permissions the principle does not grant. " +
		"Rate from 0.0 to 1.0 how resistant the rule is to abuse, where 1.0 means no loopholes found. " +
		"Respond with only the number.",
}

// scorePattern extracts the first decimal number from a model reply.
var scorePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// LLMValidator scores a (principle, rule) pair by asking an LLM to review
// it and parsing a numeric score from the reply.
type LLMValidator struct {
	name      string
	role      Role
	completer Completer
}

// NewLLMValidator creates an LLM-backed validator with the given name and
// reviewing role.
func NewLLMValidator(name string, role Role, completer Completer) (*LLMValidator, error) {
	if name == "" {
		return nil, fmt.Errorf("validator name cannot be empty")
	}
	if completer == nil {
		return nil, fmt.Errorf("completer cannot be nil")
	}
	if _, ok := rolePrompts[role]; !ok {
		return nil, fmt.Errorf("unknown validator role %q", role)
	}

	return &LLMValidator{
		name:      name,
		role:      role,
		completer: completer,
	}, nil
}

// Score prompts the backing model and parses its numeric verdict.
func (v *LLMValidator) Score(ctx context.Context, principle, rule string) (float64, error) {
	prompt := fmt.Sprintf("%s\n\nPrinciple:\n%s\n\nRule:\n%s\n\nScore:",
		rolePrompts[v.role], principle, rule)

	reply, err := v.completer.Complete(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("completion failed: %w", err)
	}

	return parseScore(reply)
}

// Name returns the validator name.
func (v *LLMValidator) Name() string {
	return v.name
}

// Role returns the validator's reviewing role.
func (v *LLMValidator) Role() Role {
	return v.role
}

// parseScore extracts a score in [0,1] from a model reply. Models sometimes
// answer "0.85." or "Score: 0.85"; the first number found wins.
func parseScore(reply string) (float64, error) {
	match := scorePattern.FindString(strings.TrimSpace(reply))
	if match == "" {
		return 0, fmt.Errorf("no numeric score in model reply %q", truncate(reply, 80))
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable score %q: %w", match, err)
	}
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("score %g outside [0,1]", score)
	}
	return score, nil
}

// truncate shortens s to at most n runes for log/error messages.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
