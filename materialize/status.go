package materialize

import (
	"context"

	"github.com/jmgilman/gitfarm/errors"
)

// Status describes a checkout on disk.
type Status struct {
	// Locator identifies the checkout.
	Locator Locator

	// Path is the checkout directory.
	Path string

	// Exists is false when the checkout directory is missing; the remaining
	// fields are then zero.
	Exists bool

	// Head is the commit HEAD points at.
	Head string

	// Branch is set when HEAD is attached to a branch.
	Branch string

	// Clean reports a worktree without local modifications.
	Clean bool

	// Entry is the ledger record, nil when the ledger is disabled or has no
	// record.
	Entry *Checkout
}

// Checkouts lists the ledger. It returns nil when the ledger is disabled.
func (m *Materializer) Checkouts() ([]Checkout, error) {
	if m.ledger == nil {
		return nil, nil
	}
	return m.ledger.list()
}

// Status inspects the checkout of repository without modifying it.
func (m *Materializer) Status(ctx context.Context, repository string) (Status, error) {
	loc, err := ParseLocator(repository)
	if err != nil {
		return Status{}, err
	}

	st := Status{Locator: loc, Path: loc.CheckoutPath(m.settings.WorkingRoot)}
	if m.ledger != nil {
		entry, ok, err := m.ledger.get(loc)
		if err != nil {
			return Status{}, err
		}
		if ok {
			st.Entry = &entry
		}
	}

	exists, err := m.isDir(st.Path)
	if err != nil || !exists {
		return st, err
	}
	st.Exists = true

	head, err := m.inspector.Head(ctx, st.Path)
	if err != nil {
		return st, errors.WithContext(err, "path", st.Path)
	}
	st.Head, st.Branch = head.Hash, head.Branch

	st.Clean, err = m.inspector.IsClean(ctx, st.Path)
	if err != nil {
		return st, errors.WithContext(err, "path", st.Path)
	}
	return st, nil
}

// Verify reports whether the checkout of repository is clean and at
// commit as resolved in the shared cache.
func (m *Materializer) Verify(ctx context.Context, repository, commit string) (bool, error) {
	loc, err := ParseLocator(repository)
	if err != nil {
		return false, err
	}
	if err := validateCommit(commit); err != nil {
		return false, err
	}

	errCtx := map[string]any{"repository": repository, "commit": commit}
	sha, err := m.resolve(ctx, loc.SharedPath(m.settings.SharedRoot), commit, errCtx)
	if err != nil {
		return false, err
	}

	st, err := m.Status(ctx, repository)
	if err != nil {
		return false, err
	}
	return st.Exists && st.Clean && st.Head == sha, nil
}
