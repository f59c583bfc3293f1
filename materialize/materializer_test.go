package materialize

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/gitfarm/config"
	"github.com/jmgilman/gitfarm/errors"
	"github.com/jmgilman/gitfarm/git"
	"github.com/jmgilman/gitfarm/git/mocks"
	"github.com/jmgilman/gitfarm/telemetry"
)

const (
	sharedRoot  = "/srv/shared"
	workingRoot = "/srv/work"
	repoURL     = "https://git.example.com/org/app.git"
	fullSHA     = "abc1230000000000000000000000000000000000"
)

func testSettings() config.Settings {
	s := config.Defaults()
	s.SharedRoot = sharedRoot
	s.WorkingRoot = workingRoot
	s.LockRepositories = false
	return s
}

// harness wires a Materializer to an OperationsMock on memfs and records
// the order of git operations.
type harness struct {
	t   *testing.T
	fs  billy.Filesystem
	ops *mocks.OperationsMock
	m   *Materializer
	now time.Time

	mu    sync.Mutex
	calls []string
	subs  []git.Submodule
}

func newHarness(t *testing.T, settings config.Settings, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:   t,
		fs:  memfs.New(),
		now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	h.ops = &mocks.OperationsMock{
		ResolveRevisionFunc: func(_ context.Context, repoPath, rev string) (string, error) {
			h.record("resolve " + rev)
			if rev == "abc123" || rev == fullSHA {
				return fullSHA, nil
			}
			return "", errors.New(errors.CodeRefNotFound, "revision not found in repository")
		},
		CloneSharedFunc: func(_ context.Context, source, dest string) error {
			h.record("clone " + source + " " + dest)
			return h.fs.MkdirAll(dest, 0o755)
		},
		ResetHardFunc: func(context.Context, string) error {
			h.record("reset")
			return nil
		},
		CleanUntrackedFunc: func(context.Context, string) error {
			h.record("clean")
			return nil
		},
		CheckoutFunc: func(_ context.Context, _ string, rev string) error {
			h.record("checkout " + rev)
			return nil
		},
		SubmoduleInitFunc: func(context.Context, string) error {
			h.record("submodule-init")
			return nil
		},
		ListSubmodulesFunc: func(context.Context, string) ([]git.Submodule, error) {
			h.record("submodule-list")
			return h.subs, nil
		},
		SetSubmoduleURLFunc: func(_ context.Context, _ string, name, url string) error {
			h.record("set-url " + name + " " + url)
			return nil
		},
		SubmoduleUpdateFunc: func(_ context.Context, _ string, path string) error {
			h.record("update " + path)
			return nil
		},
	}

	base := []Option{
		WithFilesystem(h.fs),
		WithRecorder(telemetry.NewRecorder(prometheus.NewRegistry())),
		WithClock(func() time.Time { return h.now }),
	}
	m, err := New(settings, h.ops, append(base, opts...)...)
	require.NoError(t, err)
	h.m = m
	return h
}

func (h *harness) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *harness) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

func (h *harness) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *harness) mkdir(path string) {
	h.t.Helper()
	require.NoError(h.t, h.fs.MkdirAll(path, 0o755))
}

func (h *harness) exists(path string) bool {
	_, err := h.fs.Stat(path)
	return err == nil
}

func TestNew_InvalidSettings(t *testing.T) {
	s := testSettings()
	s.WorkingRoot = "relative"
	_, err := New(s, &mocks.OperationsMock{})
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

	_, err = New(testSettings(), nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestMaterialize_FreshCheckout(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")

	path, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	require.NoError(t, err)

	assert.Equal(t, workingRoot+"/org/app", path)
	assert.True(t, h.exists(path))
	assert.Equal(t, []string{
		"resolve abc123",
		"clone " + sharedRoot + "/org/app.git " + workingRoot + "/org/app",
		"reset",
		"clean",
		"checkout " + fullSHA,
		"submodule-init",
		"submodule-list",
	}, h.recorded())

	entries, err := h.m.Checkouts()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Checkout{
		Repository: repoURL,
		Namespace:  "org",
		Name:       "app",
		Path:       path,
		Commit:     fullSHA,
		CreatedAt:  h.now,
		LastAccess: h.now,
	}, entries[0])
}

func TestMaterialize_SecondCallReusesCheckout(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")
	ctx := context.Background()

	first, err := h.m.Materialize(ctx, repoURL, "abc123")
	require.NoError(t, err)
	created := h.now

	h.reset()
	h.now = h.now.Add(time.Hour)

	second, err := h.m.Materialize(ctx, repoURL, "abc123")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, []string{
		"resolve abc123",
		"reset",
		"clean",
		"checkout " + fullSHA,
		"submodule-init",
		"submodule-list",
	}, h.recorded(), "an existing checkout must not be cloned again")

	entries, err := h.m.Checkouts()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, created, entries[0].CreatedAt)
	assert.Equal(t, h.now, entries[0].LastAccess)
}

func TestMaterialize_SharedCacheMissing(t *testing.T) {
	h := newHarness(t, testSettings())

	_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	require.Error(t, err)
	assert.Equal(t, errors.CodeCacheMissing, errors.GetCode(err))
	assert.False(t, errors.IsRetryable(err))
	assert.Empty(t, h.recorded(), "no git command may run without a shared cache entry")
	assert.False(t, h.exists(workingRoot+"/org"))
}

func TestMaterialize_SharedCacheEntryIsFile(t *testing.T) {
	h := newHarness(t, testSettings())
	f, err := h.fs.Create(sharedRoot + "/org/app.git")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = h.m.Materialize(context.Background(), repoURL, "abc123")
	assert.Equal(t, errors.CodeCacheMissing, errors.GetCode(err))
}

func TestMaterialize_RefNotFound(t *testing.T) {
	t.Run("no prior checkout", func(t *testing.T) {
		h := newHarness(t, testSettings())
		h.mkdir(sharedRoot + "/org/app.git")

		_, err := h.m.Materialize(context.Background(), repoURL, "deadbeef")
		require.Error(t, err)
		assert.Equal(t, errors.CodeRefNotFound, errors.GetCode(err))
		assert.True(t, errors.IsRetryable(err))

		assert.Equal(t, []string{"resolve deadbeef"}, h.recorded())
		assert.False(t, h.exists(workingRoot+"/org/app"))
		assert.False(t, h.exists(workingRoot+"/org"))
	})

	t.Run("prior checkout untouched", func(t *testing.T) {
		h := newHarness(t, testSettings())
		h.mkdir(sharedRoot + "/org/app.git")
		_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
		require.NoError(t, err)
		h.reset()

		_, err = h.m.Materialize(context.Background(), repoURL, "deadbeef")
		assert.Equal(t, errors.CodeRefNotFound, errors.GetCode(err))
		assert.Equal(t, []string{"resolve deadbeef"}, h.recorded())
		assert.True(t, h.exists(workingRoot+"/org/app"))
	})
}

func TestMaterialize_ResolverFailureIsRefNotFound(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")
	h.ops.ResolveRevisionFunc = func(context.Context, string, string) (string, error) {
		return "", errors.New(errors.CodeInternal, "corrupt pack")
	}

	_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	assert.Equal(t, errors.CodeRefNotFound, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestMaterialize_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		repository string
		commit     string
	}{
		{"identifier without namespace", "https://git.example.com/app.git", "abc123"},
		{"identifier without .git", "https://git.example.com/org/app", "abc123"},
		{"empty commit", repoURL, ""},
		{"option-like commit", repoURL, "--upload-pack=evil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSettings())
			h.mkdir(sharedRoot + "/org/app.git")

			_, err := h.m.Materialize(context.Background(), tt.repository, tt.commit)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Empty(t, h.recorded())
		})
	}
}

func TestMaterialize_WithResolver(t *testing.T) {
	var used bool
	resolver := resolverFunc(func(_ context.Context, repoPath, rev string) (string, error) {
		used = true
		assert.Equal(t, sharedRoot+"/org/app.git", repoPath)
		return fullSHA, nil
	})

	h := newHarness(t, testSettings(), WithResolver(resolver))
	h.mkdir(sharedRoot + "/org/app.git")

	_, err := h.m.Materialize(context.Background(), repoURL, "main")
	require.NoError(t, err)
	assert.True(t, used)
	assert.Empty(t, h.ops.ResolveRevisionCalls())
	assert.Contains(t, h.recorded(), "checkout "+fullSHA)
}

type resolverFunc func(ctx context.Context, repoPath, rev string) (string, error)

func (f resolverFunc) ResolveRevision(ctx context.Context, repoPath, rev string) (string, error) {
	return f(ctx, repoPath, rev)
}

func TestMaterialize_Submodules(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")
	h.mkdir(sharedRoot + "/org/lib.git")
	h.subs = []git.Submodule{
		{Name: "lib", Path: "vendor/lib", URL: "https://git.example.com/org/lib.git"},
		{Name: "docs", Path: "docs", URL: "git@git.example.com:org/docs.git"},
		{Name: "odd", Path: "odd", URL: "https://git.example.com/odd"},
	}

	_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	require.NoError(t, err)

	calls := h.recorded()
	assert.Equal(t, []string{
		"set-url lib " + sharedRoot + "/org/lib.git",
		"update vendor/lib",
		"update docs",
		"update odd",
	}, calls[len(calls)-4:], "only submodules with a shared entry are redirected, and all are updated")

	require.Len(t, h.ops.SetSubmoduleURLCalls(), 1)
}

func TestMaterialize_SubmoduleAlreadyRedirected(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")
	h.mkdir(sharedRoot + "/org/lib.git")
	h.subs = []git.Submodule{
		{Name: "lib", Path: "lib", URL: sharedRoot + "/org/lib.git"},
	}

	_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	require.NoError(t, err)
	assert.Empty(t, h.ops.SetSubmoduleURLCalls())
	assert.Len(t, h.ops.SubmoduleUpdateCalls(), 1)
}

func TestMaterialize_StepFailureAborts(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")
	h.ops.CleanUntrackedFunc = func(context.Context, string) error {
		h.record("clean")
		return errors.New(errors.CodeExecutionFailed, "git command failed")
	}

	_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	require.Error(t, err)
	assert.Equal(t, errors.CodeExecutionFailed, errors.GetCode(err))

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "clean", pe.Context()["step"])
	assert.Equal(t, repoURL, pe.Context()["repository"])

	calls := h.recorded()
	assert.Equal(t, "clean", calls[len(calls)-1], "no step may run after a failure")
	assert.True(t, h.exists(workingRoot+"/org/app"), "no cleanup on failure")

	entries, err := h.m.Checkouts()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMaterialize_ForeignErrorIsExecutionFailure(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")
	h.ops.SubmoduleUpdateFunc = func(context.Context, string, string) error {
		return fmt.Errorf("boom")
	}
	h.subs = []git.Submodule{{Name: "x", Path: "x", URL: "https://h/org/x.git"}}

	_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	assert.Equal(t, errors.CodeExecutionFailed, errors.GetCode(err))
}

func TestMaterialize_SameRepositorySerialized(t *testing.T) {
	h := newHarness(t, testSettings())
	h.mkdir(sharedRoot + "/org/app.git")

	var active, overlap int32
	h.ops.ResetHardFunc = func(context.Context, string) error {
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.StoreInt32(&overlap, 1)
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlap))
	assert.Len(t, h.ops.CloneSharedCalls(), 1)
}

func TestMaterialize_LedgerDisabled(t *testing.T) {
	s := testSettings()
	s.Ledger = false
	h := newHarness(t, s)
	h.mkdir(sharedRoot + "/org/app.git")

	_, err := h.m.Materialize(context.Background(), repoURL, "abc123")
	require.NoError(t, err)

	entries, err := h.m.Checkouts()
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.False(t, h.exists(filepath.Join(workingRoot, ".gitfarm")))

	_, err = h.m.Prune(context.Background(), PruneOlderThan(time.Hour))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}
