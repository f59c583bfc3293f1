package exec

import (
	"context"
	"io"
	"time"
)

// CommandWrapper prepends a fixed binary to every Run, e.g. "git".
// It implements Executor, so it can stand in wherever one is expected.
type CommandWrapper struct {
	executor Executor
	cmd      string
}

// NewWrapper wraps executor so that Run(args...) executes cmd with args.
func NewWrapper(executor Executor, cmd string) *CommandWrapper {
	return &CommandWrapper{
		executor: executor,
		cmd:      cmd,
	}
}

// Binary returns the wrapped command name.
func (w *CommandWrapper) Binary() string {
	return w.cmd
}

func (w *CommandWrapper) WithEnv(env map[string]string) Executor {
	w.executor = w.executor.WithEnv(env)
	return w
}

func (w *CommandWrapper) WithDir(dir string) Executor {
	w.executor = w.executor.WithDir(dir)
	return w
}

func (w *CommandWrapper) WithContext(ctx context.Context) Executor {
	w.executor = w.executor.WithContext(ctx)
	return w
}

func (w *CommandWrapper) WithTimeout(timeout time.Duration) Executor {
	w.executor = w.executor.WithTimeout(timeout)
	return w
}

func (w *CommandWrapper) WithInheritEnv() Executor {
	w.executor = w.executor.WithInheritEnv()
	return w
}

func (w *CommandWrapper) WithStdout(out io.Writer) Executor {
	w.executor = w.executor.WithStdout(out)
	return w
}

func (w *CommandWrapper) WithStderr(out io.Writer) Executor {
	w.executor = w.executor.WithStderr(out)
	return w
}

func (w *CommandWrapper) WithPassthrough() Executor {
	w.executor = w.executor.WithPassthrough()
	return w
}

func (w *CommandWrapper) WithAllowedExitCodes(codes ...int) Executor {
	w.executor = w.executor.WithAllowedExitCodes(codes...)
	return w
}

// Run executes the wrapped binary with args.
func (w *CommandWrapper) Run(args ...string) (*Result, error) {
	full := append([]string{w.cmd}, args...)
	return w.executor.Run(full...)
}

// Clone returns a wrapper around a clone of the underlying executor.
func (w *CommandWrapper) Clone() Executor {
	return &CommandWrapper{
		executor: w.executor.Clone(),
		cmd:      w.cmd,
	}
}
