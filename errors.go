package propdex

import "github.com/kailas-cloud/propdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrValidation       = domain.ErrValidation
	ErrDataUnavailable  = domain.ErrDataUnavailable
	ErrModelUnavailable = domain.ErrModelUnavailable
	ErrComputation      = domain.ErrComputation
)
