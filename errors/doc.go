// Package errors provides structured errors for the gitfarm worker.
//
// Every error that leaves a gitfarm package is a PlatformError carrying an
// ErrorCode, a retry classification, an optional context map, and the
// wrapped cause. The standard library helpers (errors.Is, errors.As,
// errors.Unwrap) keep working on the chain.
//
// # Codes callers branch on
//
//   - CodeRefNotFound: the requested commit is not (yet) in the shared
//     cache. Classified retryable, since the out-of-band mirror may catch up.
//   - CodeCacheMissing: the shared cache entry itself does not exist.
//   - CodeInvalidInput: the repository identifier or commit was malformed.
//   - CodeExecutionFailed: a version-control command exited non-zero.
//
// Example:
//
//	path, err := m.Materialize(ctx, repo, commit)
//	switch errors.GetCode(err) {
//	case errors.CodeRefNotFound:
//	    // requeue and wait for the mirror
//	case errors.CodeUnknown:
//	    // success (err == nil) or a foreign error
//	}
//
// # JSON
//
// ToJSON flattens any error into an ErrorResponse without the cause chain,
// which is what the CLI prints with --json.
package errors
