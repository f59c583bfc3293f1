package materialize

import (
	"context"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/jmgilman/gitfarm/git"
	"github.com/jmgilman/gitfarm/telemetry"
)

// Inspector reads checkout state without modifying it. git.Inspector
// implements it.
type Inspector interface {
	Head(ctx context.Context, repoPath string) (git.HeadInfo, error)
	IsClean(ctx context.Context, repoPath string) (bool, error)
}

// Option configures a Materializer.
type Option func(*options)

type options struct {
	fs        billy.Filesystem
	resolver  git.Resolver
	inspector Inspector
	recorder  *telemetry.Recorder
	now       func() time.Time
}

// WithFilesystem sets the filesystem used for existence checks, directory
// creation, the ledger and pruning. Defaults to the OS filesystem rooted at
// /. Tests pass memfs.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithResolver overrides how commits are resolved in the shared cache.
// Without it the Operations passed to New resolve, or a go-git Inspector
// when NativeResolve is set.
func WithResolver(r git.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithInspector sets the Inspector used by Status and Verify.
func WithInspector(i Inspector) Option {
	return func(o *options) {
		o.inspector = i
	}
}

// WithRecorder sets the telemetry recorder. Defaults to telemetry.Default().
func WithRecorder(r *telemetry.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithClock sets the time source for ledger timestamps and pruning.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
