package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies domain failures surfaced to callers.
type ErrorCode string

// Domain error codes. Validation and sequencing errors always carry the
// specific field/reason; stale_write is the only retryable code.
const (
	// CodeValidation marks malformed or out-of-range input.
	CodeValidation ErrorCode = "validation"
	// CodeDateOutOfSequence marks a date write violating temporal ordering.
	CodeDateOutOfSequence ErrorCode = "date_out_of_sequence"
	// CodeInvalidTransition marks an illegal plan-state move.
	CodeInvalidTransition ErrorCode = "invalid_transition"
	// CodeBirthDateLocked marks an attempt to clear a birth actual date while
	// the linked offspring group still has members.
	CodeBirthDateLocked ErrorCode = "birth_date_locked"
	// CodeUnlinkBlocked marks an attempt to unlink or delete a group that the
	// deletion guard protects.
	CodeUnlinkBlocked ErrorCode = "unlink_blocked"
	// CodeStaleWrite marks a concurrent-edit conflict. Callers may retry
	// after re-fetching current state.
	CodeStaleWrite ErrorCode = "stale_write"
	// CodeNotFound marks a missing referenced entity.
	CodeNotFound ErrorCode = "not_found"
	// CodeInternal wraps opaque persistence-layer failures. Retry policy
	// belongs to the calling transport, not the core.
	CodeInternal ErrorCode = "internal"
)

// DomainError is the typed error surfaced by the date engine.
type DomainError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError builds a validation error for a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{Code: CodeValidation, Field: field, Message: message}
}

// NewNotFoundError reports a missing entity reference.
func NewNotFoundError(entity EntityType, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewStaleWriteError reports an optimistic concurrency conflict.
func NewStaleWriteError(entity EntityType, id string, expected, actual int64) *DomainError {
	return &DomainError{
		Code:    CodeStaleWrite,
		Message: fmt.Sprintf("%s %s version %d does not match current version %d", entity, id, expected, actual),
	}
}

// NewInternalError wraps a persistence failure as an opaque internal error.
func NewInternalError(err error) *DomainError {
	return &DomainError{Code: CodeInternal, Message: err.Error()}
}

// CodeOf extracts the domain error code, or empty when err is not a DomainError.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
