package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// ConflictError represents a uniqueness violation, e.g. a duplicate email.
type ConflictError struct {
	Resource string
	Message  string
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

// StorageError wraps a failure of the persistence layer
type StorageError struct {
	Message string
	Err     error
}

// NewStorageError creates a new storage error
func NewStorageError(message string, err error) *StorageError {
	return &StorageError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *StorageError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// HTTPStatuser is implemented by errors that map onto an HTTP status code
type HTTPStatuser interface {
	HTTPStatus() int
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsConflict reports whether err is or wraps a *ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}

// IsStorage reports whether err is or wraps a *StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return stderrors.As(err, &target)
}

// HTTPStatusOf returns the status code carried by err, or 500 when err does
// not carry one.
func HTTPStatusOf(err error) int {
	var s HTTPStatuser
	if stderrors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}
