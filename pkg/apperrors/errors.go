// Package apperrors defines the application error taxonomy shared across
// layers. Every error carries the HTTP status it maps to at the handler
// boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is implemented by all application errors.
type AppError interface {
	error
	HTTPStatus() int
}

// NotFoundError reports that no record exists for the given identifier.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// NewNotFoundError creates a NotFoundError for a resource and identifier.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// NewValidationError creates a ValidationError naming the offending field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidFieldError reports a filter or sort criterion that names a field
// the resource does not declare. Rejected rather than ignored so a caller
// typo cannot return the entire unfiltered collection.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

func (e *InvalidFieldError) HTTPStatus() int { return http.StatusBadRequest }

// NewInvalidFieldError creates an InvalidFieldError for the given field.
func NewInvalidFieldError(field string) *InvalidFieldError {
	return &InvalidFieldError{Field: field}
}

// InvalidArgumentError reports inconsistent caller-supplied arguments,
// e.g. a page number without a page size.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }

func (e *InvalidArgumentError) HTTPStatus() int { return http.StatusBadRequest }

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(message string) *InvalidArgumentError {
	return &InvalidArgumentError{Message: message}
}

// ConflictError reports a uniqueness violation such as a duplicate slug.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *ConflictError) HTTPStatus() int { return http.StatusConflict }

// NewConflictError creates a ConflictError for a duplicate field value.
func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// InternalError wraps an unexpected failure from the persistence layer or
// elsewhere. The cause is logged server-side and never leaks to callers.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

func (e *InternalError) Unwrap() error { return e.Cause }

func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }

// NewInternalError creates an InternalError with an optional cause.
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// HTTPStatus returns the status an error maps to, defaulting to 500 for
// errors outside the taxonomy.
func HTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
