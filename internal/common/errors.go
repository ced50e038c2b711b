// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrValidation marks malformed or out-of-policy caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an operation that targets a nonexistent id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEntry marks a uniqueness violation.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports input that the ledger refuses to accept.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error for a single input field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// UniquenessError reports a category whose (name, kind) pair is already taken.
type UniquenessError struct {
	Name string
	Kind string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s: a %s category named %q already exists", ErrDuplicateEntry, e.Kind, e.Name)
}

// Is lets errors.Is match ErrDuplicateEntry.
func (e *UniquenessError) Is(target error) bool {
	return target == ErrDuplicateEntry
}

// NotFoundError reports an operation on an id that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Resource, e.ID, ErrNotFound)
}

// Is lets errors.Is match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a not-found error for the given resource and id.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsBusinessError reports whether err is one of the expected outcomes
// (validation, uniqueness, not found) rather than an unexpected fault.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateEntry) ||
		errors.Is(err, ErrNotFound)
}
