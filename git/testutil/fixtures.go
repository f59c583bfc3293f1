// Package testutil builds real git repositories for tests that need the
// git binary: source repositories, bare mirrors standing in for the shared
// cache, and submodule layouts. Every command runs with an isolated
// environment so the developer's git configuration never leaks in.
package testutil

import (
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmgilman/gitfarm/exec"
)

// Test identity used for every fixture commit.
const (
	// TestAuthor is the author and committer name of fixture commits.
	TestAuthor = "Test User"

	// TestEmail is the author and committer email of fixture commits.
	TestEmail = "test@example.com"

	// TestBranch is the initial branch of fixture repositories.
	TestBranch = "main"
)

// RequireGit skips the test when no git binary is on PATH.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := osexec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// Env returns an isolated git environment rooted at a fresh HOME. Local
// file transport is allowed so submodules can be cloned from disk.
func Env(t testing.TB) map[string]string {
	t.Helper()
	return map[string]string{
		"PATH":                os.Getenv("PATH"),
		"HOME":                t.TempDir(),
		"GIT_CONFIG_NOSYSTEM": "1",
		"GIT_TERMINAL_PROMPT": "0",
		"GIT_AUTHOR_NAME":     TestAuthor,
		"GIT_AUTHOR_EMAIL":    TestEmail,
		"GIT_COMMITTER_NAME":  TestAuthor,
		"GIT_COMMITTER_EMAIL": TestEmail,
		"GIT_CONFIG_COUNT":    "1",
		"GIT_CONFIG_KEY_0":    "protocol.file.allow",
		"GIT_CONFIG_VALUE_0":  "always",
	}
}

// Executor returns an exec.Executor that runs with Env(t). Pass it to
// git.NewCLI through git.WithExecutor.
func Executor(t testing.TB) exec.Executor {
	t.Helper()
	return exec.New(exec.WithEnv(Env(t)))
}

// Git runs git in dir and returns trimmed stdout. The test fails on error.
func Git(t testing.TB, dir string, args ...string) string {
	t.Helper()
	git := exec.NewWrapper(Executor(t), "git")
	if dir != "" {
		git.WithDir(dir)
	}
	res, err := git.Run(args...)
	require.NoError(t, err, "git %s", strings.Join(args, " "))
	return strings.TrimSpace(res.Stdout)
}

// NewRepo initializes a repository at dir with one commit containing
// README.md and returns that commit's hash.
func NewRepo(t testing.TB, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	Git(t, dir, "-c", "init.defaultBranch="+TestBranch, "init", "--quiet")
	return CommitFile(t, dir, "README.md", "# fixture\n", "Initial commit")
}

// CommitFile writes name with content under dir, commits it and returns
// the new commit hash.
func CommitFile(t testing.TB, dir, name, content, message string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	Git(t, dir, "add", "--", name)
	Git(t, dir, "commit", "--quiet", "-m", message)
	return Git(t, dir, "rev-parse", "HEAD")
}

// AddSubmodule registers url at path inside the repository at dir, commits
// the change and returns the new commit hash.
func AddSubmodule(t testing.TB, dir, url, path string) string {
	t.Helper()
	Git(t, dir, "submodule", "add", "--quiet", "--", url, path)
	Git(t, dir, "commit", "--quiet", "-m", "Add submodule "+path)
	return Git(t, dir, "rev-parse", "HEAD")
}

// Mirror creates a bare mirror of src at dest, the layout of a shared
// cache entry.
func Mirror(t testing.TB, src, dest string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	Git(t, "", "clone", "--quiet", "--mirror", "--", src, dest)
}

// Fetch updates the mirror at dest from its origin.
func Fetch(t testing.TB, dest string) {
	t.Helper()
	Git(t, dest, "fetch", "--quiet", "--prune", "origin")
}
