package exec

import (
	"context"
	"errors"
	"io"
	"os"
	osexec "os/exec"
	"time"
)

// Command is the os/exec backed Executor.
//
// A Command is not safe for concurrent use because local settings live on
// the value. Call Clone to get an independent Command per goroutine.
type Command struct {
	config *config
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
}

// New creates a Command with the given global options.
func New(opts ...Option) *Command {
	cmd := &Command{
		config: newConfig(),
		ctx:    context.Background(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(cmd)
	}
	return cmd
}

// WithEnv sets environment variables for the next run.
func (c *Command) WithEnv(env map[string]string) Executor {
	for k, v := range env {
		c.config.localEnv[k] = v
	}
	return c
}

// WithDir sets the working directory for the next run.
func (c *Command) WithDir(dir string) Executor {
	c.config.localDir = dir
	return c
}

// WithContext sets the context for the next run.
func (c *Command) WithContext(ctx context.Context) Executor {
	c.ctx = ctx
	return c
}

// WithTimeout bounds the next run.
func (c *Command) WithTimeout(timeout time.Duration) Executor {
	c.config.localTimeout = &timeout
	return c
}

// WithInheritEnv passes the parent environment through for the next run.
func (c *Command) WithInheritEnv() Executor {
	v := true
	c.config.localInheritEnv = &v
	return c
}

// WithStdout sets the stdout passthrough writer.
func (c *Command) WithStdout(w io.Writer) Executor {
	c.stdout = w
	return c
}

// WithStderr sets the stderr passthrough writer.
func (c *Command) WithStderr(w io.Writer) Executor {
	c.stderr = w
	return c
}

// WithPassthrough enables output passthrough for the next run.
func (c *Command) WithPassthrough() Executor {
	v := true
	c.config.localPassthrough = &v
	return c
}

// WithAllowedExitCodes allow-lists exit codes for the next run.
func (c *Command) WithAllowedExitCodes(codes ...int) Executor {
	c.config.localAllowedCodes = append(c.config.localAllowedCodes, codes...)
	return c
}

// Run executes the command. A non-zero exit that was not allow-listed
// returns both the Result and an *ExecError.
func (c *Command) Run(args ...string) (*Result, error) {
	defer c.config.resetLocal()

	if len(args) == 0 {
		return nil, &ExecError{
			Command:  args,
			ExitCode: -1,
			Err:      osexec.ErrNotFound,
		}
	}

	ctx := c.ctx
	if timeout := c.config.effectiveTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, args[0], args[1:]...)
	if dir := c.config.effectiveDir(); dir != "" {
		cmd.Dir = dir
	}

	if c.config.effectiveInheritEnv() {
		cmd.Env = os.Environ()
	}
	for k, v := range c.config.effectiveEnv() {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdoutCapture, stderrCapture *outputCapture
	if c.config.effectivePassthrough() {
		stdoutCapture = newOutputCapture(c.stdout)
		stderrCapture = newOutputCapture(c.stderr)
	} else {
		stdoutCapture = newOutputCapture(nil)
		stderrCapture = newOutputCapture(nil)
	}
	combined := newCombinedWriter()

	cmd.Stdout = newMultiWriter(stdoutCapture.Writer(), combined)
	cmd.Stderr = newMultiWriter(stderrCapture.Writer(), combined)

	err := cmd.Run()

	result := &Result{
		Stdout:   stdoutCapture.String(),
		Stderr:   stderrCapture.String(),
		Combined: combined.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil && c.config.allowed(result.ExitCode) {
			return result, nil
		}
		return result, &ExecError{
			Command:  args,
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}

	return result, nil
}

// Clone returns an independent copy of the Command.
func (c *Command) Clone() Executor {
	return &Command{
		config: c.config.clone(),
		ctx:    c.ctx,
		stdout: c.stdout,
		stderr: c.stderr,
	}
}
