package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a rejected search request (missing or malformed parameter).
	ErrValidation = errors.New("validation failed")
	// ErrCatalogUnavailable signals that the source tables could not be loaded.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// LoadError reports which source table failed to load. It matches
// ErrCatalogUnavailable via errors.Is and exposes the cause via errors.As/Unwrap.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: load %s: %v", ErrCatalogUnavailable.Error(), e.Table, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error { return []error{ErrCatalogUnavailable, e.Err} }

// NewLoadError wraps err as a load failure of the given table.
func NewLoadError(table string, err error) error {
	return &LoadError{Table: table, Err: err}
}

// ValidationError names the offending request parameter.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Param, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for param.
func NewValidationError(param, reason string) error {
	return &ValidationError{Param: param, Reason: reason}
}
