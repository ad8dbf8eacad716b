package common

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Fatal errors surface to the caller as-is; transient
// ones (ErrServiceUnavailable, ErrTimeout) are retried with bounded backoff at
// the call site before degrading or failing.
var (
	// ErrEmptyInput means no usable text came out of text extraction.
	ErrEmptyInput = errors.New("no usable text in document")
	// ErrInvalidSchema means a caller-supplied custom schema is malformed.
	// Surfaced before any external call is made.
	ErrInvalidSchema = errors.New("invalid custom schema")
	// ErrUnreadableDocument means the text-extraction adapter cannot process the input.
	ErrUnreadableDocument = errors.New("unreadable document")
	// ErrServiceUnavailable is a transient completion-service failure.
	ErrServiceUnavailable = errors.New("completion service unavailable")
	// ErrTimeout is a completion-service call that exceeded its deadline.
	ErrTimeout = errors.New("completion service timeout")
	// ErrExtractionParse means the completion service returned an unparseable
	// structured response even after repair.
	ErrExtractionParse = errors.New("unparseable extraction response")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrTimeout)
}

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrInvalidInput marks caller mistakes surfaced through AppError causes.
var ErrInvalidInput = errors.New("invalid input")

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
