package git

import (
	"context"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/jmgilman/gitfarm/errors"
)

// Inspector reads repositories with go-git. It never writes and never runs
// the git binary.
type Inspector struct{}

var _ Resolver = Inspector{}

// NewInspector returns an Inspector.
func NewInspector() Inspector {
	return Inspector{}
}

// HeadInfo describes a checkout's HEAD.
type HeadInfo struct {
	// Hash is the commit HEAD points at.
	Hash string

	// Branch is the short branch name, empty when HEAD is detached.
	Branch string
}

// ResolveRevision resolves rev in the repository at repoPath and verifies
// the result names a commit object that is present, including in the
// object store borrowed through objects/info/alternates.
func (Inspector) ResolveRevision(ctx context.Context, repoPath, rev string) (string, error) {
	if err := checkRevision(rev); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.CodeTimeout, "resolve interrupted")
	}

	repo, err := open(repoPath)
	if err != nil {
		return "", err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", errors.WithContextMap(
			classifyError(err, "failed to resolve revision"),
			map[string]any{"repository": repoPath, "revision": rev})
	}

	if _, err := repo.CommitObject(*hash); err != nil {
		return "", errors.WithContextMap(
			classifyError(err, "revision does not name a commit"),
			map[string]any{"repository": repoPath, "revision": rev})
	}
	return hash.String(), nil
}

// Head returns the commit and branch HEAD points at.
func (Inspector) Head(ctx context.Context, repoPath string) (HeadInfo, error) {
	if err := ctx.Err(); err != nil {
		return HeadInfo{}, errors.Wrap(err, errors.CodeTimeout, "head lookup interrupted")
	}

	repo, err := open(repoPath)
	if err != nil {
		return HeadInfo{}, err
	}

	ref, err := repo.Head()
	if err != nil {
		return HeadInfo{}, errors.WithContext(classifyError(err, "failed to read HEAD"), "repository", repoPath)
	}

	info := HeadInfo{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}

// IsClean reports whether the worktree has no modified, staged or
// untracked files.
func (Inspector) IsClean(ctx context.Context, repoPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(err, errors.CodeTimeout, "status interrupted")
	}

	repo, err := open(repoPath)
	if err != nil {
		return false, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, errors.WithContext(classifyError(err, "failed to open worktree"), "repository", repoPath)
	}

	status, err := wt.Status()
	if err != nil {
		return false, errors.WithContext(classifyError(err, "failed to read status"), "repository", repoPath)
	}
	return status.IsClean(), nil
}

func open(repoPath string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(repoPath, &gogit.PlainOpenOptions{
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, errors.WithContext(classifyError(err, "failed to open repository"), "repository", repoPath)
	}
	return repo, nil
}
