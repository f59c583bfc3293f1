package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/jmgilman/gitfarm/config"
	"github.com/jmgilman/gitfarm/errors"
	"github.com/jmgilman/gitfarm/git"
	"github.com/jmgilman/gitfarm/materialize"
)

// environment is what a subcommand needs after settings are loaded.
type environment struct {
	ctx          context.Context
	settings     config.Settings
	materializer *materialize.Materializer
}

// setup loads settings, installs the logger on the command context and
// builds a Materializer.
func (o *globalOptions) setup(cmd *cobra.Command) (*environment, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path := o.configPath
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid config path",
				map[string]any{"path": path})
		}
		path = abs
	}

	settings, err := config.NewLoader().Load(ctx, path, o.overrides(cmd))
	if err != nil {
		return nil, err
	}

	handler, err := newHandler(cmd.ErrOrStderr(), settings.LogLevel, o.logFormat)
	if err != nil {
		return nil, err
	}
	ctx = clog.WithLogger(ctx, clog.New(handler))

	timeout, err := settings.Timeout()
	if err != nil {
		return nil, err
	}
	gitOpts := []git.CLIOption{git.WithBinary(settings.GitBinary), git.WithCommandTimeout(timeout)}
	if o.verbose {
		gitOpts = append(gitOpts, git.WithOutput(cmd.ErrOrStderr()))
	}
	ops := git.NewCLI(gitOpts...)

	m, err := materialize.New(settings, ops)
	if err != nil {
		return nil, err
	}

	return &environment{ctx: ctx, settings: settings, materializer: m}, nil
}

// overrides returns the settings given explicitly on the command line.
func (o *globalOptions) overrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("shared-root") {
		out["sharedRoot"] = o.sharedRoot
	}
	if flags.Changed("working-root") {
		out["workingRoot"] = o.workingRoot
	}
	if flags.Changed("log-level") {
		out["logLevel"] = o.logLevel
	}
	return out
}

func newHandler(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, errors.WithContext(
			errors.New(errors.CodeInvalidInput, "log format must be text or json"),
			"format", format)
	}
}
