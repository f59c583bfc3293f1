package materialize

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/jmgilman/gitfarm/config"
	"github.com/jmgilman/gitfarm/errors"
	"github.com/jmgilman/gitfarm/git"
	"github.com/jmgilman/gitfarm/telemetry"
)

// Materializer turns (repository, commit) pairs into working checkouts
// backed by the shared cache.
type Materializer struct {
	settings  config.Settings
	ops       git.Operations
	resolver  git.Resolver
	inspector Inspector
	fs        billy.Filesystem
	locks     *locker
	ledger    *ledger
	recorder  *telemetry.Recorder
	now       func() time.Time
}

// New returns a Materializer for settings that runs git through ops.
func New(settings config.Settings, ops git.Operations, opts ...Option) (*Materializer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if ops == nil {
		return nil, errors.New(errors.CodeInvalidInput, "git operations are required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = osfs.New("/")
	}
	if o.inspector == nil {
		o.inspector = git.NewInspector()
	}
	if o.resolver == nil {
		if settings.NativeResolve {
			o.resolver = git.NewInspector()
		} else {
			o.resolver = ops
		}
	}
	if o.recorder == nil {
		o.recorder = telemetry.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}

	m := &Materializer{
		settings:  settings,
		ops:       ops,
		resolver:  o.resolver,
		inspector: o.inspector,
		fs:        o.fs,
		locks:     newLocker(settings.LockRepositories),
		recorder:  o.recorder,
		now:       o.now,
	}
	if settings.Ledger {
		m.ledger = newLedger(o.fs, settings.WorkingRoot, m.locks)
	}
	return m, nil
}

// Materialize brings the checkout of repository to commit and returns its
// path, <working_root>/<namespace>/<name>.
//
// The shared cache entry must exist (CodeCacheMissing) and contain commit
// (CodeRefNotFound). Both are checked before anything is written, so a
// failed check leaves the working root untouched. The checkout is created
// by a shared clone on first use and afterwards reset, cleaned and checked
// out in place. Submodules whose repositories are also in the shared cache
// are redirected there before they are updated. Any other git failure
// aborts with CodeExecutionFailed and nothing is rolled back.
func (m *Materializer) Materialize(ctx context.Context, repository, commit string) (string, error) {
	var path string
	err := m.recorder.Benchmark(ctx, "materialize", func(ctx context.Context) error {
		var err error
		path, err = m.materialize(ctx, repository, commit)
		return err
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (m *Materializer) materialize(ctx context.Context, repository, commit string) (string, error) {
	loc, err := ParseLocator(repository)
	if err != nil {
		return "", err
	}
	if err := validateCommit(commit); err != nil {
		return "", errors.WithContext(err, "repository", repository)
	}

	errCtx := map[string]any{"repository": repository, "commit": commit}
	log := clog.FromContext(ctx).With("repository", loc.String(), "commit", commit)
	ctx = clog.WithLogger(ctx, log)

	shared := loc.SharedPath(m.settings.SharedRoot)
	present, err := m.isDir(shared)
	if err != nil {
		return "", errors.WithContextMap(err, errCtx)
	}
	if !present {
		return "", errors.WithContextMap(
			errors.New(errors.CodeCacheMissing, "repository is not present in the shared cache"),
			withKey(errCtx, "shared_path", shared))
	}

	sha, err := m.resolve(ctx, shared, commit, errCtx)
	if err != nil {
		return "", err
	}
	log.Debug("resolved commit", "sha", sha)

	checkout := loc.CheckoutPath(m.settings.WorkingRoot)
	err = m.locks.with(ctx, loc.String(), loc.LockPath(m.settings.WorkingRoot), func() error {
		return m.sync(ctx, loc, repository, shared, checkout, sha, errCtx)
	})
	if err != nil {
		return "", err
	}

	log.Info("materialized checkout", "path", checkout, "sha", sha)
	return checkout, nil
}

// resolve checks commit against the shared cache entry. Every failure
// other than cancellation or bad input is reported as CodeRefNotFound.
func (m *Materializer) resolve(ctx context.Context, shared, commit string, errCtx map[string]any) (string, error) {
	sha, err := m.resolver.ResolveRevision(ctx, shared, commit)
	if err == nil {
		return sha, nil
	}

	switch errors.GetCode(err) {
	case errors.CodeRefNotFound, errors.CodeTimeout, errors.CodeInvalidInput:
		return "", errors.WithContextMap(err, errCtx)
	default:
		return "", errors.WithClassification(
			errors.WrapWithContext(err, errors.CodeRefNotFound, "commit not found in shared cache", errCtx),
			errors.ClassificationRetryable)
	}
}

// sync runs the locked part of a materialization.
func (m *Materializer) sync(ctx context.Context, loc Locator, repository, shared, checkout, sha string, errCtx map[string]any) error {
	log := clog.FromContext(ctx)

	exists, err := m.isDir(checkout)
	if err != nil {
		return errors.WithContextMap(err, errCtx)
	}
	if !exists {
		if err := m.fs.MkdirAll(filepath.Dir(checkout), 0o755); err != nil {
			return errors.WrapWithContext(err, errors.CodeIO, "failed to create checkout parent", errCtx)
		}
		log.Debug("cloning from shared cache", "source", shared, "path", checkout)
		if err := m.ops.CloneShared(ctx, shared, checkout); err != nil {
			return stepError(err, "clone", errCtx)
		}
		log.Info("created checkout", "path", checkout)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"reset", func() error { return m.ops.ResetHard(ctx, checkout) }},
		{"clean", func() error { return m.ops.CleanUntracked(ctx, checkout) }},
		{"checkout", func() error { return m.ops.Checkout(ctx, checkout, sha) }},
		{"submodule-init", func() error { return m.ops.SubmoduleInit(ctx, checkout) }},
	}
	for _, step := range steps {
		log.Debug("running step", "step", step.name)
		if err := step.run(); err != nil {
			return stepError(err, step.name, errCtx)
		}
	}

	subs, err := m.ops.ListSubmodules(ctx, checkout)
	if err != nil {
		return stepError(err, "submodule-list", errCtx)
	}
	for _, sub := range subs {
		if err := m.redirectSubmodule(ctx, checkout, sub); err != nil {
			return stepError(err, "submodule-url", withKey(errCtx, "submodule", sub.Name))
		}
	}
	for _, sub := range subs {
		log.Debug("updating submodule", "submodule", sub.Name, "path", sub.Path)
		if err := m.ops.SubmoduleUpdate(ctx, checkout, sub.Path); err != nil {
			return stepError(err, "submodule-update", withKey(errCtx, "submodule", sub.Name))
		}
	}

	if m.ledger == nil {
		return nil
	}
	now := m.now()
	err = m.ledger.record(ctx, Checkout{
		Repository: repository,
		Namespace:  loc.Namespace,
		Name:       loc.Name,
		Path:       checkout,
		Commit:     sha,
		CreatedAt:  now,
		LastAccess: now,
	})
	if err != nil {
		log.Warn("failed to record checkout in ledger", "error", err)
	}
	return nil
}

// redirectSubmodule points sub at its shared cache entry when one exists.
// A URL that does not map to the shared cache layout, or whose entry is
// absent, is left as declared.
func (m *Materializer) redirectSubmodule(ctx context.Context, checkout string, sub git.Submodule) error {
	log := clog.FromContext(ctx).With("submodule", sub.Name, "url", sub.URL)

	loc, err := ParseLocator(sub.URL)
	if err != nil {
		log.Warn("submodule URL does not map to the shared cache layout")
		return nil
	}

	shared := loc.SharedPath(m.settings.SharedRoot)
	if sub.URL == shared {
		return nil
	}

	present, err := m.isDir(shared)
	if err != nil {
		log.Warn("cannot inspect shared cache entry for submodule", "shared_path", shared, "error", err)
		return nil
	}
	if !present {
		log.Debug("no shared cache entry for submodule", "shared_path", shared)
		return nil
	}

	log.Debug("redirecting submodule to shared cache", "shared_path", shared)
	return m.ops.SetSubmoduleURL(ctx, checkout, sub.Name, shared)
}

// isDir reports whether path exists and is a directory.
func (m *Materializer) isDir(path string) (bool, error) {
	info, err := m.fs.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapWithContext(err, errors.CodeIO, "failed to stat path", map[string]any{"path": path})
	}
	return info.IsDir(), nil
}

// validateCommit rejects commits that are empty or would be parsed as an
// option.
func validateCommit(commit string) error {
	if strings.TrimSpace(commit) == "" {
		return errors.New(errors.CodeInvalidInput, "commit must not be empty")
	}
	if strings.HasPrefix(commit, "-") {
		return errors.WithContext(errors.New(errors.CodeInvalidInput, "commit must not start with '-'"), "commit", commit)
	}
	return nil
}

// stepError attaches the failed step to err. Errors that are not already
// PlatformErrors are reported as CodeExecutionFailed.
func stepError(err error, step string, errCtx map[string]any) error {
	ctx := withKey(errCtx, "step", step)

	var pe errors.PlatformError
	if errors.As(err, &pe) {
		return errors.WithContextMap(err, ctx)
	}
	return errors.WrapWithContext(err, errors.CodeExecutionFailed, step+" failed", ctx)
}

func withKey(m map[string]any, key string, value any) map[string]any {
	out := maps.Clone(m)
	out[key] = value
	return out
}
