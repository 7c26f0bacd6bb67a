// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSecurityNotFound = errors.New("security not found")
	ErrNoISINColumn     = errors.New("input file has no ISIN column")
	ErrEmptyBatch       = errors.New("no valid identifiers to process")
	ErrNoStoredResult   = errors.New("no stored batch result")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// ProviderError represents a non-2xx response from a market-data endpoint.
// It aborts processing of the current identifier for the current pass but
// never the whole batch.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider error [%s]: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error [%s]: status %d", e.Endpoint, e.StatusCode)
}

// NewProviderError creates a new ProviderError.
func NewProviderError(endpoint string, statusCode int, message string) *ProviderError {
	return &ProviderError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// IsProviderError reports whether err wraps a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// InputError represents a malformed batch upload. It is fatal to the whole
// batch and is reported before any network call is made.
type InputError struct {
	File   string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input error [%s]: %s: %v", e.File, e.Reason, e.Err)
	}
	return fmt.Sprintf("input error [%s]: %s", e.File, e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError creates a new InputError.
func NewInputError(file, reason string, err error) *InputError {
	return &InputError{
		File:   file,
		Reason: reason,
		Err:    err,
	}
}

// StoreError represents a persistence failure.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation string, err error) *StoreError {
	return &StoreError{Operation: operation, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
