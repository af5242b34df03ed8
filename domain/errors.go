package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeConfiguration        ErrorCode = "CONFIGURATION"
	ErrCodeDirectoryUnavailable ErrorCode = "DIRECTORY_UNAVAILABLE"
	ErrCodeTemplateNotFound     ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeAccessDenied         ErrorCode = "ACCESS_DENIED"
	ErrCodeTransientWrite       ErrorCode = "TRANSIENT_WRITE"
	ErrCodePermanentWrite       ErrorCode = "PERMANENT_WRITE"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeInvalid              ErrorCode = "INVALID"
	ErrCodeInternal             ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrMissingDomain        = NewError(ErrCodeConfiguration, "sync domain is not configured")
	ErrInvalidBatchSize     = NewError(ErrCodeConfiguration, "batch size must be positive")
	ErrDirectoryUnavailable = NewError(ErrCodeDirectoryUnavailable, "directory provider unavailable")
	ErrTemplateNotFound     = NewError(ErrCodeTemplateNotFound, "template not found")
	ErrAccessDenied         = NewError(ErrCodeAccessDenied, "write credential denied")
	ErrRunNotFound          = NewError(ErrCodeNotFound, "run report not found")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsRetryable reports whether a write failure may be retried. Only transient
// write errors (rate limiting, 5xx-class responses, network failures) consume
// retry budget; everything else fails the identity immediately.
func IsRetryable(err error) bool {
	return IsDomainError(err, ErrCodeTransientWrite)
}
