// Package planerror defines the typed errors returned at the boundaries of the
// forecasting engine: input decoding, validation, lookups and persistence.
package planerror

import (
	"errors"
	"fmt"
)

// ErrInvalidDate is wrapped by InvalidInputError when a date cannot be parsed.
var ErrInvalidDate = errors.New("invalid ISO date")

// ErrUnknownMethod is wrapped by InvalidInputError for an unsupported projection method.
var ErrUnknownMethod = errors.New("unknown projection method")

// InvalidInputError represents a field value that could not be interpreted
type InvalidInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s='%s': %v", e.Field, e.Value, e.Err)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure
type ValidationError struct {
	Subject string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Subject, e.Reason)
}

// NotFoundError is returned when a referenced row, record or scenario does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

// FormulaError describes a problem found in a calculated category's formula.
type FormulaError struct {
	CategoryID string
	Token      string
	Reason     string
}

func (e *FormulaError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("formula of category '%s': token '%s': %s", e.CategoryID, e.Token, e.Reason)
	}
	return fmt.Sprintf("formula of category '%s': %s", e.CategoryID, e.Reason)
}

// StorageError wraps a failure from a persistence backend.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
