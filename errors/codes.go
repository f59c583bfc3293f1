package errors

// ErrorCode identifies a class of failure.
// Codes are strings so they read well in logs and serialize naturally.
type ErrorCode string

const (
	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeRefNotFound indicates a commit or ref does not resolve in the shared cache.
	CodeRefNotFound ErrorCode = "REF_NOT_FOUND"

	// CodeCacheMissing indicates the shared cache entry for a repository is absent.
	CodeCacheMissing ErrorCode = "SHARED_CACHE_MISSING"

	// CodeAlreadyExists indicates a resource already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeInvalidInput indicates a malformed repository identifier, commit, or argument.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates the worker settings are invalid.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeExecutionFailed indicates an external command exited non-zero.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeLockUnavailable indicates a repository lock could not be acquired.
	CodeLockUnavailable ErrorCode = "LOCK_UNAVAILABLE"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeIO indicates a local filesystem operation failed.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeInternal indicates a bug or an unexpected state.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorClassification tells callers whether retrying may help.
type ErrorClassification string

const (
	// ClassificationRetryable marks failures that may succeed later.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent marks failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true for ClassificationRetryable.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeRefNotFound:     ClassificationRetryable,
	CodeLockUnavailable: ClassificationRetryable,
	CodeTimeout:         ClassificationRetryable,
	CodeIO:              ClassificationRetryable,

	CodeNotFound:        ClassificationPermanent,
	CodeCacheMissing:    ClassificationPermanent,
	CodeAlreadyExists:   ClassificationPermanent,
	CodeInvalidInput:    ClassificationPermanent,
	CodeInvalidConfig:   ClassificationPermanent,
	CodeExecutionFailed: ClassificationPermanent,
	CodeInternal:        ClassificationPermanent,
	CodeUnknown:         ClassificationPermanent,
}

// defaultClassification returns the classification for code, or
// ClassificationPermanent when the code is not registered.
func defaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
