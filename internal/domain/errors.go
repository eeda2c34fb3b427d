package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the input data is invalid. It is the
	// only error class surfaced to API callers by the aggregation pipeline.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates that an external literature source
	// failed at the transport or top-level-parse layer. The orchestrator
	// recovers from it per source.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates that a request was rate limited.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// SourceError wraps a failure from one literature source with its name.
type SourceError struct {
	Source SourceType
	Cause  error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Cause)
}

// Unwrap returns the sentinel so errors.Is(err, ErrSourceUnavailable) holds.
func (e *SourceError) Unwrap() error {
	return ErrSourceUnavailable
}

// ExternalAPIError provides details about an external API error response.
type ExternalAPIError struct {
	Source     string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap classifies external API errors as source unavailability.
func (e *ExternalAPIError) Unwrap() error {
	return ErrSourceUnavailable
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// NewSourceError creates a new SourceError.
func NewSourceError(source SourceType, cause error) *SourceError {
	return &SourceError{
		Source: source,
		Cause:  cause,
	}
}

// NewExternalAPIError creates a new ExternalAPIError.
func NewExternalAPIError(source string, statusCode int, message string) *ExternalAPIError {
	return &ExternalAPIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
	}
}
