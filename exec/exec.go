package exec

import (
	"context"
	"io"
	"time"
)

//go:generate go run github.com/matryer/moq@latest -out mocks/executor.go -pkg mocks . Executor

// Executor runs external commands through a fluent configuration API.
//
// Settings made through the With* methods are local: they apply to the next
// Run call only and are reset afterwards. Settings passed to New as Options
// are global defaults.
type Executor interface {
	// WithEnv sets environment variables for the next run.
	WithEnv(env map[string]string) Executor

	// WithDir sets the working directory for the next run.
	WithDir(dir string) Executor

	// WithContext sets the context for the next run. The process is killed
	// when the context is done.
	WithContext(ctx context.Context) Executor

	// WithTimeout bounds the next run. Zero means no timeout.
	WithTimeout(timeout time.Duration) Executor

	// WithInheritEnv passes the parent process environment through.
	WithInheritEnv() Executor

	// WithStdout sets the passthrough writer for stdout.
	WithStdout(w io.Writer) Executor

	// WithStderr sets the passthrough writer for stderr.
	WithStderr(w io.Writer) Executor

	// WithPassthrough streams output to the stdout/stderr writers while it is
	// also captured.
	WithPassthrough() Executor

	// WithAllowedExitCodes lists non-zero exit codes that the next run should
	// treat as success. The exit code is still reported in Result.
	WithAllowedExitCodes(codes ...int) Executor

	// Run executes args[0] with args[1:].
	Run(args ...string) (*Result, error)

	// Clone returns an independent copy with the same configuration.
	Clone() Executor
}

// Result holds the outcome of a run.
type Result struct {
	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string

	// Combined is stdout and stderr interleaved in write order.
	Combined string

	// ExitCode is the process exit code, or -1 if it never started.
	ExitCode int
}

// Option configures global settings on a Command.
type Option func(*Command)

// WithEnv sets global environment variables.
func WithEnv(env map[string]string) Option {
	return func(c *Command) {
		for k, v := range env {
			c.config.globalEnv[k] = v
		}
	}
}

// WithDir sets the global working directory.
func WithDir(dir string) Option {
	return func(c *Command) {
		c.config.globalDir = dir
	}
}

// WithContext sets the global context.
func WithContext(ctx context.Context) Option {
	return func(c *Command) {
		c.ctx = ctx
	}
}

// WithTimeout sets a global per-run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Command) {
		c.config.globalTimeout = timeout
	}
}

// WithInheritEnv enables environment inheritance globally.
func WithInheritEnv() Option {
	return func(c *Command) {
		c.config.globalInheritEnv = true
	}
}

// WithStdout sets the global stdout passthrough writer.
func WithStdout(w io.Writer) Option {
	return func(c *Command) {
		c.stdout = w
	}
}

// WithStderr sets the global stderr passthrough writer.
func WithStderr(w io.Writer) Option {
	return func(c *Command) {
		c.stderr = w
	}
}

// WithPassthrough enables output passthrough globally.
func WithPassthrough() Option {
	return func(c *Command) {
		c.config.globalPassthrough = true
	}
}
