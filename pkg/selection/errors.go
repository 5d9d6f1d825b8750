package selection

import (
	"errors"
	"fmt"
	"strings"
)

// Common selection errors that can be checked with errors.Is().
var (
	// ErrNoEligibleTemplates is returned when the category filter leaves
	// zero eligible arms.
	ErrNoEligibleTemplates = errors.New("no eligible templates for selection")

	// ErrUnknownTemplate is returned when an outcome is recorded for a
	// template that was never registered.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrNoTemplatesRegistered matches selection errors caused by an empty
	// registry. Such errors also match ErrNoEligibleTemplates: an empty
	// registry is the degenerate empty eligible set, and callers that only
	// handle the broader sentinel must not miss it.
	ErrNoTemplatesRegistered = errors.New("no templates registered")

	// ErrInvalidStrategy is returned when an unknown selection strategy
	// is configured.
	ErrInvalidStrategy = errors.New("invalid selection strategy")
)

// NoEligibleTemplatesError is returned when a selection is requested for a
// category with zero registered templates. The caller can recover by falling
// back to an unfiltered selection or rejecting the category.
type NoEligibleTemplatesError struct {
	// Category is the requested category that matched nothing.
	Category string

	// RegisteredTemplates contains the IDs of all registered templates.
	RegisteredTemplates []string
}

// Error implements the error interface.
func (e *NoEligibleTemplatesError) Error() string {
	if len(e.RegisteredTemplates) == 0 {
		return fmt.Sprintf("no eligible templates for category %q (none registered)", e.Category)
	}
	return fmt.Sprintf("no eligible templates for category %q (registered: %s)",
		e.Category, strings.Join(e.RegisteredTemplates, ", "))
}

// Is implements error matching for errors.Is(). An empty registry also
// matches ErrNoTemplatesRegistered.
func (e *NoEligibleTemplatesError) Is(target error) bool {
	if target == ErrNoEligibleTemplates {
		return true
	}
	return target == ErrNoTemplatesRegistered && len(e.RegisteredTemplates) == 0
}

// UnknownTemplateError is returned when a reward is recorded for a template
// ID that was never registered. This indicates a caller bug; it is surfaced,
// not retried.
type UnknownTemplateError struct {
	// TemplateID is the unregistered template ID.
	TemplateID string

	// RegisteredTemplates contains the IDs of all registered templates.
	RegisteredTemplates []string
}

// Error implements the error interface.
func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("template %q not registered (registered: %s)",
		e.TemplateID, strings.Join(e.RegisteredTemplates, ", "))
}

// Is implements error matching for errors.Is().
func (e *UnknownTemplateError) Is(target error) bool {
	return target == ErrUnknownTemplate
}

// InvalidStrategyError is returned when the configured selection strategy
// is not recognized.
type InvalidStrategyError struct {
	// Strategy is the invalid strategy name.
	Strategy string

	// AvailableStrategies contains the valid strategy names.
	AvailableStrategies []string
}

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid selection strategy %q (available strategies: %s)",
		e.Strategy, strings.Join(e.AvailableStrategies, ", "))
}

// Is implements error matching for errors.Is().
func (e *InvalidStrategyError) Is(target error) bool {
	return target == ErrInvalidStrategy
}
