package catalog

import (
	"errors"
	"fmt"
)

// Common catalog errors that can be checked with errors.Is().
var (
	// ErrEmptyCatalog is returned when a catalog file declares no templates.
	ErrEmptyCatalog = errors.New("catalog declares no templates")

	// ErrInvalidTemplate is returned when a template definition is invalid.
	ErrInvalidTemplate = errors.New("invalid template definition")

	// ErrDuplicateTemplate is returned when two templates share an ID.
	ErrDuplicateTemplate = errors.New("duplicate template id")
)

// InvalidTemplateError is returned when a template definition fails
// validation during catalog loading.
type InvalidTemplateError struct {
	// ID is the offending template ID (may be empty when the ID itself
	// is missing).
	ID string

	// Field is the name of the invalid field.
	Field string

	// Reason explains why the field is invalid.
	Reason string
}

// Error implements the error interface.
func (e *InvalidTemplateError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid template: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid template %q: %s %s", e.ID, e.Field, e.Reason)
}

// Is implements error matching for errors.Is().
func (e *InvalidTemplateError) Is(target error) bool {
	return target == ErrInvalidTemplate
}

// DuplicateTemplateError is returned when a catalog file declares the same
// template ID more than once.
type DuplicateTemplateError struct {
	// ID is the duplicated template ID.
	ID string
}

// Error implements the error interface.
func (e *DuplicateTemplateError) Error() string {
	return fmt.Sprintf("duplicate template id %q in catalog", e.ID)
}

// Is implements error matching for errors.Is().
func (e *DuplicateTemplateError) Is(target error) bool {
	return target == ErrDuplicateTemplate
}
