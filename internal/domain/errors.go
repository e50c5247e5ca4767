package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals malformed or missing caller input.
	ErrValidation = errors.New("validation failed")
	// ErrDataUnavailable signals a required external attribute that could not be supplied.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrModelUnavailable signals that no usable model artifact is loaded.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrComputation signals a violated internal invariant.
	ErrComputation = errors.New("computation failed")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrInsightQuotaExceeded signals an exhausted insight generation budget.
	ErrInsightQuotaExceeded = errors.New("insight quota exceeded")
	// ErrInsightProviderError signals an insight provider failure.
	ErrInsightProviderError = errors.New("insight provider error")
)

// ValidationError wraps ErrValidation with the offending field name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error naming the offending field.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// DataUnavailableError wraps ErrDataUnavailable with the missing attribute.
type DataUnavailableError struct {
	Attribute string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDataUnavailable.Error(), e.Attribute)
}

func (e *DataUnavailableError) Unwrap() error { return ErrDataUnavailable }

// NewDataUnavailable creates a data-unavailable error for the named attribute.
func NewDataUnavailable(attribute string) error {
	return &DataUnavailableError{Attribute: attribute}
}

// ModelUnavailableError wraps ErrModelUnavailable with the requested version.
type ModelUnavailableError struct {
	Version string
}

func (e *ModelUnavailableError) Error() string {
	if e.Version == "" {
		return ErrModelUnavailable.Error() + ": no active model"
	}
	return fmt.Sprintf("%s: version %q", ErrModelUnavailable.Error(), e.Version)
}

func (e *ModelUnavailableError) Unwrap() error { return ErrModelUnavailable }

// NewModelUnavailable creates a model-unavailable error for the requested version.
// An empty version means no artifact is loaded at all.
func NewModelUnavailable(version string) error {
	return &ModelUnavailableError{Version: version}
}

// ComputationError wraps ErrComputation with the failing stage.
type ComputationError struct {
	Stage  string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: stage %q %s", ErrComputation.Error(), e.Stage, e.Reason)
}

func (e *ComputationError) Unwrap() error { return ErrComputation }

// NewComputation creates a computation error for the named pipeline stage.
func NewComputation(stage, reason string) error {
	return &ComputationError{Stage: stage, Reason: reason}
}
