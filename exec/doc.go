// Package exec runs external commands behind a mockable interface.
//
// Command wraps os/exec with a fluent API, separate stdout/stderr/combined
// capture, optional passthrough, per-run timeouts, and exit-code
// allow-lists. CommandWrapper pins the binary so call sites read like the
// tool they drive:
//
//	git := exec.NewWrapper(exec.New(exec.WithInheritEnv()), "git")
//	res, err := git.WithDir(repo).
//	    WithAllowedExitCodes(1).
//	    Run("config", "--get-regexp", `^submodule\..*\.url$`)
//
// # Global and local settings
//
// Options passed to New are global defaults. The With* methods set local
// values that override the globals for the next Run only and are cleared
// afterwards.
//
// # Exit codes
//
// A non-zero exit returns the Result together with an *ExecError holding
// the exit code and captured output. Codes listed with WithAllowedExitCodes
// are returned as success instead; Result.ExitCode still tells them apart.
// A run killed by its context or timeout is never treated as allowed.
//
// # Testing
//
// Code that runs commands should accept an Executor. Tests pass
// mocks.ExecutorMock (generated with moq) instead of a real Command.
package exec
