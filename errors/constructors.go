package errors

import (
	"errors"
	"fmt"
	"maps"
)

// New creates a PlatformError with the default classification for code.
//
// Example:
//
//	err := errors.New(errors.CodeInvalidInput, "commit must not be empty")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: defaultClassification(code),
		message:        message,
	}
}

// Newf creates a PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err under code. When err already carries a PlatformError its
// classification is kept, otherwise the default for code applies.
// Returns nil if err is nil.
//
// Example:
//
//	if err := fs.MkdirAll(parent, 0o755); err != nil {
//	    return errors.Wrap(err, errors.CodeIO, "failed to create checkout parent")
//	}
func Wrap(err error, code ErrorCode, message string) PlatformError {
	return WrapWithContext(err, code, message, nil)
}

// Wrapf wraps err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...any) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps err and attaches a copy of ctx in one step.
// Returns nil if err is nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]any) PlatformError {
	if err == nil {
		return nil
	}

	classification := defaultClassification(code)
	var inner PlatformError
	if errors.As(err, &inner) {
		classification = inner.Classification()
	}

	var copied map[string]any
	if ctx != nil {
		copied = maps.Clone(ctx)
	}

	return &platformError{
		code:           code,
		classification: classification,
		message:        message,
		context:        copied,
		cause:          err,
	}
}

// WithContext returns err with key set in its context. Foreign errors are
// converted to CodeUnknown first. Returns nil if err is nil.
func WithContext(err error, key string, value any) PlatformError {
	return WithContextMap(err, map[string]any{key: value})
}

// WithContextMap merges ctx into err's context; new keys win.
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WithContextMap(err, map[string]any{
//	    "repository": repo,
//	    "commit":     commit,
//	})
func WithContextMap(err error, ctx map[string]any) PlatformError {
	if err == nil {
		return nil
	}

	pe := asPlatform(err)
	merged := make(map[string]any, len(ctx))
	maps.Copy(merged, pe.Context())
	maps.Copy(merged, ctx)

	return &platformError{
		code:           pe.Code(),
		classification: pe.Classification(),
		message:        pe.Message(),
		context:        merged,
		cause:          pe.Unwrap(),
	}
}

// WithClassification overrides the classification of err.
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) PlatformError {
	if err == nil {
		return nil
	}

	pe := asPlatform(err)
	return &platformError{
		code:           pe.Code(),
		classification: classification,
		message:        pe.Message(),
		context:        pe.Context(),
		cause:          pe.Unwrap(),
	}
}

// asPlatform returns the outermost PlatformError in err's chain, or a
// CodeUnknown PlatformError wrapping err.
func asPlatform(err error) PlatformError {
	var pe PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	return &platformError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
