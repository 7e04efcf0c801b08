// Package services provides the business operations behind the HTTP and CLI
// surfaces, plus standardized error types for them.
package services

import (
	"errors"
	"fmt"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmptyUpload        = errors.New("upload must include at least one table")
	ErrUnknownEntityType  = errors.New("unknown entity type")
	ErrMalformedRule      = errors.New("malformed rule")
	ErrInvalidCellValue   = errors.New("invalid cell value")
	ErrRowNotFound        = errors.New("row not found")
	ErrRuleNotFound       = errors.New("rule not found")
	ErrAINotConfigured    = errors.New("AI collaborator is not configured")
	ErrDescriptionMissing = errors.New("rule description cannot be empty")

	// Business Logic Conflicts (409 Conflict).
	ErrExportBlocked = errors.New("export blocked by unresolved errors")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyUpload) ||
		errors.Is(err, ErrUnknownEntityType) ||
		errors.Is(err, ErrMalformedRule) ||
		errors.Is(err, ErrInvalidCellValue) ||
		errors.Is(err, ErrRowNotFound) ||
		errors.Is(err, ErrAINotConfigured) ||
		errors.Is(err, ErrDescriptionMissing)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrExportBlocked)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
