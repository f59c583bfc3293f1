package git

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jmgilman/gitfarm/errors"
	"github.com/jmgilman/gitfarm/exec"
)

// submoduleURLPattern matches every submodule URL key in git config.
const submoduleURLPattern = `^submodule\..*\.url$`

// CLI implements Operations with the git binary.
type CLI struct {
	git     exec.Executor
	binary  string
	timeout time.Duration
	output  io.Writer
}

var _ Operations = (*CLI)(nil)

// CLIOption configures a CLI.
type CLIOption func(*cliOptions)

type cliOptions struct {
	executor exec.Executor
	binary   string
	timeout  time.Duration
	output   io.Writer
}

// WithExecutor sets the executor the binary is run through. Tests pass an
// exec mock here.
func WithExecutor(e exec.Executor) CLIOption {
	return func(o *cliOptions) {
		o.executor = e
	}
}

// WithBinary sets the git binary name or path. Defaults to "git".
func WithBinary(binary string) CLIOption {
	return func(o *cliOptions) {
		if binary != "" {
			o.binary = binary
		}
	}
}

// WithCommandTimeout bounds every git invocation. Zero disables the bound.
func WithCommandTimeout(d time.Duration) CLIOption {
	return func(o *cliOptions) {
		o.timeout = d
	}
}

// WithOutput streams the stdout and stderr of every git command to w while
// still capturing them.
func WithOutput(w io.Writer) CLIOption {
	return func(o *cliOptions) {
		o.output = w
	}
}

// NewCLI returns a CLI. Without WithExecutor it runs git with the parent
// environment and terminal prompts disabled.
func NewCLI(opts ...CLIOption) *CLI {
	o := &cliOptions{binary: "git"}
	for _, opt := range opts {
		opt(o)
	}
	if o.executor == nil {
		o.executor = exec.New(
			exec.WithInheritEnv(),
			exec.WithEnv(map[string]string{"GIT_TERMINAL_PROMPT": "0"}),
		)
	}

	c := &CLI{
		git:     exec.NewWrapper(o.executor, o.binary),
		binary:  o.binary,
		timeout: o.timeout,
	}
	if o.output != nil {
		c.output = &lockedWriter{w: o.output}
	}
	return c
}

// lockedWriter serializes writes from the stdout and stderr copiers of
// concurrent commands.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// run executes one git command in dir and maps failures to PlatformErrors.
func (c *CLI) run(ctx context.Context, dir string, allowed []int, args ...string) (*exec.Result, error) {
	res, err := c.runRaw(ctx, dir, allowed, args...)
	if err != nil {
		return res, mapExecError(ctx, err, c.command(args))
	}
	return res, nil
}

// runRaw executes one git command in dir. Each call works on a clone of the
// base executor so concurrent calls never share local settings.
func (c *CLI) runRaw(ctx context.Context, dir string, allowed []int, args ...string) (*exec.Result, error) {
	cmd := c.git.Clone().WithContext(ctx)
	if dir != "" {
		cmd = cmd.WithDir(dir)
	}
	if c.timeout > 0 {
		cmd = cmd.WithTimeout(c.timeout)
	}
	if len(allowed) > 0 {
		cmd = cmd.WithAllowedExitCodes(allowed...)
	}
	if c.output != nil {
		cmd = cmd.WithStdout(c.output).WithStderr(c.output).WithPassthrough()
	}

	return cmd.Run(args...)
}

func (c *CLI) command(args []string) []string {
	return append([]string{c.binary}, args...)
}

// ResolveRevision runs git rev-list -n 1 and returns the commit hash.
// Any failure is reported as CodeRefNotFound with the original error as
// cause.
func (c *CLI) ResolveRevision(ctx context.Context, repoPath, rev string) (string, error) {
	if err := checkRevision(rev); err != nil {
		return "", err
	}

	args := []string{"rev-list", "-n", "1", rev, "--"}
	res, err := c.runRaw(ctx, repoPath, nil, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", mapExecError(ctx, err, c.command(args))
		}
		return "", errors.WrapWithContext(err, errors.CodeRefNotFound,
			"revision not found in repository",
			map[string]any{"repository": repoPath, "revision": rev})
	}

	hash := strings.TrimSpace(res.Stdout)
	if hash == "" {
		return "", errors.WithContextMap(
			errors.New(errors.CodeRefNotFound, "revision not found in repository"),
			map[string]any{"repository": repoPath, "revision": rev})
	}
	return hash, nil
}

// CloneShared runs git clone --shared --no-checkout source dest.
func (c *CLI) CloneShared(ctx context.Context, source, dest string) error {
	_, err := c.run(ctx, "", nil, "clone", "--shared", "--no-checkout", "--", source, dest)
	return err
}

// ResetHard runs git reset --hard.
func (c *CLI) ResetHard(ctx context.Context, repoPath string) error {
	_, err := c.run(ctx, repoPath, nil, "reset", "--hard", "--quiet")
	return err
}

// CleanUntracked runs git clean -ffdx. The doubled force flag also removes
// nested repositories left behind by earlier submodule checkouts.
func (c *CLI) CleanUntracked(ctx context.Context, repoPath string) error {
	_, err := c.run(ctx, repoPath, nil, "clean", "-ffdx", "--quiet")
	return err
}

// Checkout runs git checkout --detach rev.
func (c *CLI) Checkout(ctx context.Context, repoPath, rev string) error {
	if err := checkRevision(rev); err != nil {
		return err
	}
	_, err := c.run(ctx, repoPath, nil, "checkout", "--quiet", "--detach", rev)
	return err
}

// SubmoduleInit runs git submodule init.
func (c *CLI) SubmoduleInit(ctx context.Context, repoPath string) error {
	_, err := c.run(ctx, repoPath, nil, "submodule", "init")
	return err
}

// ListSubmodules reads submodule.*.url from the repository configuration and
// the matching paths from the checked-out .gitmodules. git config exits 1
// when no key matches, which means there are no submodules. Entries that
// .gitmodules no longer declares are left over from earlier checkouts and
// are skipped.
func (c *CLI) ListSubmodules(ctx context.Context, repoPath string) ([]Submodule, error) {
	res, err := c.run(ctx, repoPath, []int{1}, "config", "--null", "--get-regexp", submoduleURLPattern)
	if err != nil {
		return nil, err
	}
	if res.ExitCode == 1 {
		return nil, nil
	}

	var subs []Submodule
	for _, sub := range parseSubmoduleURLs(res.Stdout) {
		path, err := c.submodulePath(ctx, repoPath, sub.Name)
		if err != nil {
			return nil, err
		}
		if path == "" {
			continue
		}
		sub.Path = path
		subs = append(subs, sub)
	}
	return subs, nil
}

// submodulePath looks up submodule.<name>.path in .gitmodules. It returns
// an empty path when the checkout does not declare the submodule.
func (c *CLI) submodulePath(ctx context.Context, repoPath, name string) (string, error) {
	res, err := c.run(ctx, repoPath, []int{1},
		"config", "--file", ".gitmodules", "--get", "submodule."+name+".path")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", nil
	}
	return strings.TrimSpace(res.Stdout), nil
}

// SetSubmoduleURL runs git config submodule.<name>.url url.
func (c *CLI) SetSubmoduleURL(ctx context.Context, repoPath, name, url string) error {
	_, err := c.run(ctx, repoPath, nil, "config", "submodule."+name+".url", url)
	return err
}

// SubmoduleUpdate runs git submodule update for a single path. File
// transport is allowed explicitly because rewritten URLs point into the
// shared cache on local disk.
func (c *CLI) SubmoduleUpdate(ctx context.Context, repoPath, path string) error {
	_, err := c.run(ctx, repoPath, nil,
		"-c", "protocol.file.allow=always", "submodule", "update", "--", path)
	return err
}

// checkRevision rejects revisions git would parse as an option.
func checkRevision(rev string) error {
	if rev == "" {
		return errors.New(errors.CodeInvalidInput, "revision must not be empty")
	}
	if strings.HasPrefix(rev, "-") {
		return errors.WithContext(
			errors.New(errors.CodeInvalidInput, "revision must not start with '-'"),
			"revision", rev)
	}
	return nil
}
