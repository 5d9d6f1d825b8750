package consensus

import (
	"errors"
	"fmt"
	"strings"
)

// Common consensus errors that can be checked with errors.Is().
var (
	// ErrInvalidWeightConfig is returned when the validator weight table is
	// misconfigured at startup. This is fatal; the validator must not be
	// constructed.
	ErrInvalidWeightConfig = errors.New("invalid validator weight configuration")

	// ErrNoValidators is returned when a heterogeneous validator is
	// constructed with an empty validator panel.
	ErrNoValidators = errors.New("no validators registered")

	// ErrDuplicateValidator is returned when two validators share a name.
	ErrDuplicateValidator = errors.New("duplicate validator name")
)

// InvalidWeightConfigError is returned when the weight table does not cover
// the validator panel or does not sum to 1.0. Construction fails fast so a
// silently skewed consensus can never reach the first request.
type InvalidWeightConfigError struct {
	// Reason explains what is wrong with the weight table.
	Reason string

	// Sum is the actual weight sum, when the reason is a sum mismatch.
	Sum float64

	// Validators contains the names of validators in the panel.
	Validators []string
}

// Error implements the error interface.
func (e *InvalidWeightConfigError) Error() string {
	if e.Sum != 0 {
		return fmt.Sprintf("invalid validator weight configuration: %s (sum=%g, validators: %s)",
			e.Reason, e.Sum, strings.Join(e.Validators, ", "))
	}
	return fmt.Sprintf("invalid validator weight configuration: %s (validators: %s)",
		e.Reason, strings.Join(e.Validators, ", "))
}

// Is implements error matching for errors.Is().
func (e *InvalidWeightConfigError) Is(target error) bool {
	return target == ErrInvalidWeightConfig
}
