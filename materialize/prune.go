package materialize

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-billy/v5/util"

	"github.com/jmgilman/gitfarm/errors"
)

// PruneStrategy selects ledger entries for removal.
type PruneStrategy interface {
	ShouldPrune(entry Checkout, now time.Time) bool
}

type pruneOlderThan struct {
	maxAge time.Duration
}

func (p *pruneOlderThan) ShouldPrune(entry Checkout, now time.Time) bool {
	return now.Sub(entry.LastAccess) > p.maxAge
}

type pruneToSize struct {
	maxBytes int64
}

// ShouldPrune is never true on its own; Prune handles size limits across
// all entries.
func (p *pruneToSize) ShouldPrune(Checkout, time.Time) bool {
	return false
}

// PruneOlderThan removes checkouts not materialized within maxAge.
func PruneOlderThan(maxAge time.Duration) PruneStrategy {
	return &pruneOlderThan{maxAge: maxAge}
}

// PruneToSize removes least recently used checkouts until the checkouts
// take at most maxBytes.
func PruneToSize(maxBytes int64) PruneStrategy {
	return &pruneToSize{maxBytes: maxBytes}
}

// Prune removes worker checkouts selected by any of strategies, together
// with their ledger entries. Entries whose directory has already vanished
// are dropped from the ledger. Each removal holds the repository lock and
// is skipped when the entry was refreshed after it was selected. The shared
// cache is never touched.
func (m *Materializer) Prune(ctx context.Context, strategies ...PruneStrategy) ([]Checkout, error) {
	if m.ledger == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "pruning requires the ledger")
	}

	var removed []Checkout
	err := m.recorder.Benchmark(ctx, "prune", func(ctx context.Context) error {
		var err error
		removed, err = m.prune(ctx, strategies)
		return err
	})
	return removed, err
}

func (m *Materializer) prune(ctx context.Context, strategies []PruneStrategy) ([]Checkout, error) {
	log := clog.FromContext(ctx)

	var sizeLimit *pruneToSize
	var others []PruneStrategy
	for _, s := range strategies {
		if ps, ok := s.(*pruneToSize); ok {
			sizeLimit = ps
		} else {
			others = append(others, s)
		}
	}

	entries, err := m.ledger.list()
	if err != nil {
		return nil, err
	}

	now := m.now()
	marked := make(map[string]bool)
	var survivors []Checkout
	for _, e := range entries {
		exists, err := m.isDir(e.Path)
		if err != nil {
			return nil, err
		}
		if !exists {
			marked[e.Locator().String()] = true
			continue
		}

		pruned := false
		for _, s := range others {
			if s.ShouldPrune(e, now) {
				marked[e.Locator().String()] = true
				pruned = true
				break
			}
		}
		if !pruned {
			survivors = append(survivors, e)
		}
	}

	if sizeLimit != nil {
		for _, key := range m.overLimit(ctx, survivors, sizeLimit.maxBytes) {
			marked[key] = true
		}
	}

	var removed []Checkout
	for _, e := range entries {
		key := e.Locator().String()
		if !marked[key] {
			continue
		}

		var changed bool
		err := m.locks.with(ctx, key, e.Locator().LockPath(m.settings.WorkingRoot), func() error {
			// A materialization may have used the checkout since the ledger was read.
			current, ok, err := m.ledger.get(e.Locator())
			if err != nil {
				return err
			}
			if !ok || !current.LastAccess.Equal(e.LastAccess) {
				changed = true
				return nil
			}

			if err := util.RemoveAll(m.fs, e.Path); err != nil && !os.IsNotExist(err) {
				return errors.WrapWithContext(err, errors.CodeIO, "failed to remove checkout",
					map[string]any{"path": e.Path})
			}
			return m.ledger.remove(ctx, key)
		})
		if err != nil {
			return removed, err
		}
		if changed {
			log.Debug("checkout used during prune, keeping it", "repository", key)
			continue
		}

		log.Info("pruned checkout", "repository", key, "path", e.Path, "last_access", e.LastAccess)
		removed = append(removed, e)
	}
	return removed, nil
}

// overLimit returns the keys of the least recently used entries whose
// removal brings the total size to at most maxBytes.
func (m *Materializer) overLimit(ctx context.Context, entries []Checkout, maxBytes int64) []string {
	type candidate struct {
		key        string
		size       int64
		lastAccess time.Time
	}

	var total int64
	candidates := make([]candidate, 0, len(entries))
	for _, e := range entries {
		size, err := m.dirSize(e.Path)
		if err != nil {
			clog.FromContext(ctx).Warn("cannot size checkout", "path", e.Path, "error", err)
			continue
		}
		total += size
		candidates = append(candidates, candidate{key: e.Locator().String(), size: size, lastAccess: e.LastAccess})
	}
	if total <= maxBytes {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastAccess.Before(candidates[j].lastAccess)
	})

	var keys []string
	for _, c := range candidates {
		if total <= maxBytes {
			break
		}
		keys = append(keys, c.key)
		total -= c.size
	}
	return keys
}

// dirSize sums the sizes of regular files under path.
func (m *Materializer) dirSize(path string) (int64, error) {
	var size int64
	err := util.Walk(m.fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
