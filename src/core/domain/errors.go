// Package domain contains domain entities, value objects, and domain-specific errors.
// This package should have no external dependencies except the standard library.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every error the core returns wraps one of these so the
// HTTP layer can pick a status without knowing where the error came from.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when authentication is required but not provided.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the user lacks permission for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when there's a conflict with the current state.
	ErrConflict = errors.New("conflict")

	// ErrUpstream is returned when the backend API answers with a server error.
	ErrUpstream = errors.New("upstream error")

	// ErrUnavailable is returned when a dependency cannot be reached or is not configured.
	ErrUnavailable = errors.New("service unavailable")
)

// DomainError is a sentinel kind plus a message and, for validation errors,
// the field at fault.
type DomainError struct {
	Base    error
	Message string
	Field   string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Base.Error(), e.Message, e.Field)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Base.Error(), e.Message)
	}
	return e.Base.Error()
}

// Unwrap returns the base error for errors.Is/As support.
func (e *DomainError) Unwrap() error {
	return e.Base
}

func newError(base error, field, message string) *DomainError {
	return &DomainError{Base: base, Message: message, Field: field}
}

// NewNotFoundError reports a missing resource, named for the message.
func NewNotFoundError(resource string) *DomainError {
	return newError(ErrNotFound, "", resource)
}

// NewValidationError reports bad input. field is the JSON name of the
// offending input and may be empty when the whole request is wrong.
func NewValidationError(field, message string) *DomainError {
	return newError(ErrInvalidInput, field, message)
}

// NewConflictError reports a request the current state does not allow,
// such as a sold out ticket type or a duplicate tenant id.
func NewConflictError(message string) *DomainError {
	return newError(ErrConflict, "", message)
}

func NewForbiddenError(message string) *DomainError {
	return newError(ErrForbidden, "", message)
}

func NewUnauthorizedError(message string) *DomainError {
	return newError(ErrUnauthorized, "", message)
}

// NewUpstreamError reports a backend or provider that answered with a failure.
func NewUpstreamError(message string) *DomainError {
	return newError(ErrUpstream, "", message)
}

// NewUnavailableError reports a dependency that could not be reached or is
// not configured.
func NewUnavailableError(message string) *DomainError {
	return newError(ErrUnavailable, "", message)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsForbidden checks if an error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnauthorized checks if an error is unauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUpstream checks if an error came from a failing backend.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsUnavailable checks if an error is a dependency outage.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

