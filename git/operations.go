package git

import "context"

//go:generate go run github.com/matryer/moq@latest -out mocks/operations.go -pkg mocks . Operations

// Operations is the set of git primitives used to materialize a checkout.
// Paths are absolute. Implementations must be safe for concurrent use on
// different repositories.
type Operations interface {
	// ResolveRevision resolves rev to a full commit hash inside the
	// repository at repoPath. A revision that does not resolve returns
	// CodeRefNotFound.
	ResolveRevision(ctx context.Context, repoPath, rev string) (string, error)

	// CloneShared creates dest as a clone of source that borrows source's
	// object store (git clone --shared) without checking out a worktree.
	CloneShared(ctx context.Context, source, dest string) error

	// ResetHard discards staged and unstaged changes to tracked files.
	ResetHard(ctx context.Context, repoPath string) error

	// CleanUntracked removes untracked and ignored files, including nested
	// repositories.
	CleanUntracked(ctx context.Context, repoPath string) error

	// Checkout moves the worktree to rev with a detached HEAD.
	Checkout(ctx context.Context, repoPath, rev string) error

	// SubmoduleInit copies submodule definitions from .gitmodules into the
	// repository configuration.
	SubmoduleInit(ctx context.Context, repoPath string) error

	// ListSubmodules returns the submodules registered in the repository
	// configuration. No registered submodules is not an error.
	ListSubmodules(ctx context.Context, repoPath string) ([]Submodule, error)

	// SetSubmoduleURL rewrites the configured URL of submodule name.
	SetSubmoduleURL(ctx context.Context, repoPath, name, url string) error

	// SubmoduleUpdate checks out the recorded commit of the submodule at
	// path, cloning it first if needed.
	SubmoduleUpdate(ctx context.Context, repoPath, path string) error
}

// Resolver resolves revisions. Both CLI and Inspector implement it.
type Resolver interface {
	ResolveRevision(ctx context.Context, repoPath, rev string) (string, error)
}

// Submodule is one entry of a repository's submodule configuration.
type Submodule struct {
	// Name is the submodule's configuration name (submodule.<name>.*).
	Name string

	// Path is the worktree-relative path the submodule is checked out at.
	Path string

	// URL is the currently configured clone URL.
	URL string
}
