// Package git drives the version-control operations a worker needs to
// materialize a checkout from a shared object cache.
//
// Operations is the seam between the materializer and git. CLI implements
// it by shelling out to the git binary through the exec package. Inspector
// implements the read-only subset (revision resolution, HEAD, cleanliness)
// natively with go-git and needs no binary.
//
// # Errors
//
// Every failure is a PlatformError from the errors package:
//
//   - CodeRefNotFound when a revision does not resolve
//   - CodeNotFound when a repository does not exist (Inspector)
//   - CodeTimeout when the caller's context ended the command
//   - CodeExecutionFailed for any other non-zero exit
//
// The error context carries the command, exit code and the first line of
// stderr.
//
// # Testing
//
// Consumers mock Operations with mocks.OperationsMock. CLI itself is tested
// against exec mocks for argument construction and against a real git
// binary, via testutil, for behaviour.
package git
