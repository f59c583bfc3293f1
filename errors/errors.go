package errors

import (
	"fmt"
	"maps"
)

// PlatformError is an error with a code, a retry classification, and
// optional context metadata.
type PlatformError interface {
	error

	// Code returns the error code.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the message without the cause.
	Message() string

	// Context returns a copy of the attached metadata, or nil.
	Context() map[string]any

	// Unwrap returns the wrapped cause, or nil.
	Unwrap() error
}

// platformError is the only PlatformError implementation. Values are
// immutable once built; every With* helper returns a new one.
type platformError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]any
	cause          error
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *platformError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *platformError) Code() ErrorCode { return e.code }

func (e *platformError) Classification() ErrorClassification { return e.classification }

func (e *platformError) Message() string { return e.message }

func (e *platformError) Context() map[string]any {
	if e.context == nil {
		return nil
	}
	return maps.Clone(e.context)
}

func (e *platformError) Unwrap() error { return e.cause }

// Is matches another PlatformError with the same code and message, so
// sentinel values built with New work with errors.Is.
func (e *platformError) Is(target error) bool {
	t, ok := target.(*platformError)
	if !ok {
		return false
	}
	return t.code == e.code && t.message == e.message
}
