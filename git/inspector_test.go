package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/gitfarm/errors"
)

// initRepo creates an on-disk repository with one commit using go-git only.
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	hash, err := wt.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestInspector_ResolveRevision(t *testing.T) {
	dir, head := initRepo(t)
	ctx := context.Background()
	in := NewInspector()

	got, err := in.ResolveRevision(ctx, dir, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, head, got)

	got, err = in.ResolveRevision(ctx, dir, head)
	require.NoError(t, err)
	assert.Equal(t, head, got)

	_, err = in.ResolveRevision(ctx, dir, "no-such-branch")
	assert.Equal(t, errors.CodeRefNotFound, errors.GetCode(err))

	_, err = in.ResolveRevision(ctx, dir, "-x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = in.ResolveRevision(ctx, filepath.Join(dir, "missing"), "HEAD")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestInspector_Cancelled(t *testing.T) {
	dir, _ := initRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInspector().ResolveRevision(ctx, dir, "HEAD")
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
}

func TestInspector_HeadAndIsClean(t *testing.T) {
	dir, head := initRepo(t)
	ctx := context.Background()
	in := NewInspector()

	info, err := in.Head(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, head, info.Hash)
	assert.NotEmpty(t, info.Branch)

	clean, err := in.IsClean(ctx, dir)
	require.NoError(t, err)
	assert.True(t, clean)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o644))
	clean, err = in.IsClean(ctx, dir)
	require.NoError(t, err)
	assert.False(t, clean)
}
