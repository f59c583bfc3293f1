package materialize

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/jmgilman/gitfarm/errors"
)

const ledgerVersion = "1"

// Checkout is the ledger record of one working checkout.
type Checkout struct {
	Repository string    `json:"repository"`
	Namespace  string    `json:"namespace"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Commit     string    `json:"commit"`
	CreatedAt  time.Time `json:"createdAt"`
	LastAccess time.Time `json:"lastAccess"`
}

// Locator returns the checkout's namespace/name pair.
func (c Checkout) Locator() Locator {
	return Locator{Namespace: c.Namespace, Name: c.Name}
}

type ledgerFile struct {
	Version   string               `json:"version"`
	Checkouts map[string]*Checkout `json:"checkouts"`
}

// ledger persists Checkout records as JSON under the working root. Every
// mutation re-reads the file so several worker processes sharing a working
// root see each other's records. With file locking enabled the
// read-modify-write is guarded by a lock file next to the ledger.
type ledger struct {
	fs     billy.Filesystem
	path   string
	locker *locker

	mu sync.Mutex
}

func newLedger(fs billy.Filesystem, workingRoot string, lk *locker) *ledger {
	return &ledger{
		fs:     fs,
		path:   filepath.Join(workingRoot, ".gitfarm", "ledger.json"),
		locker: lk,
	}
}

// load reads the ledger. A missing file is an empty ledger.
func (l *ledger) load() (*ledgerFile, error) {
	if _, err := l.fs.Stat(l.path); os.IsNotExist(err) {
		return &ledgerFile{Version: ledgerVersion, Checkouts: map[string]*Checkout{}}, nil
	}

	data, err := util.ReadFile(l.fs, l.path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeIO, "failed to read ledger", map[string]any{"path": l.path})
	}

	var f ledgerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeIO, "failed to parse ledger", map[string]any{"path": l.path})
	}
	if f.Version != ledgerVersion {
		return nil, errors.WithContextMap(errors.New(errors.CodeIO, "unsupported ledger version"),
			map[string]any{"path": l.path, "version": f.Version, "expected": ledgerVersion})
	}
	if f.Checkouts == nil {
		f.Checkouts = map[string]*Checkout{}
	}
	return &f, nil
}

// save writes the ledger atomically with write-to-temp and rename.
func (l *ledger) save(f *ledgerFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to marshal ledger")
	}

	if err := l.fs.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to create ledger directory", map[string]any{"path": l.path})
	}

	tmp, err := util.TempFile(l.fs, filepath.Dir(l.path), ".ledger-")
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to create temporary ledger", map[string]any{"path": l.path})
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = l.fs.Remove(tmpPath)
		return errors.WrapWithContext(err, errors.CodeIO, "failed to write temporary ledger", map[string]any{"path": tmpPath})
	}
	if err := tmp.Close(); err != nil {
		_ = l.fs.Remove(tmpPath)
		return errors.WrapWithContext(err, errors.CodeIO, "failed to close temporary ledger", map[string]any{"path": tmpPath})
	}
	if err := l.fs.Rename(tmpPath, l.path); err != nil {
		_ = l.fs.Remove(tmpPath)
		return errors.WrapWithContext(err, errors.CodeIO, "failed to replace ledger", map[string]any{"path": l.path})
	}
	return nil
}

// update applies fn to the current records and saves the result.
func (l *ledger) update(ctx context.Context, fn func(map[string]*Checkout)) error {
	return l.locker.with(ctx, "ledger", l.path+".lock", func() error {
		l.mu.Lock()
		defer l.mu.Unlock()

		f, err := l.load()
		if err != nil {
			return err
		}
		fn(f.Checkouts)
		return l.save(f)
	})
}

// record upserts the entry for c, keeping the original CreatedAt.
func (l *ledger) record(ctx context.Context, c Checkout) error {
	return l.update(ctx, func(entries map[string]*Checkout) {
		key := c.Locator().String()
		if prev, ok := entries[key]; ok && !prev.CreatedAt.IsZero() {
			c.CreatedAt = prev.CreatedAt
		}
		entries[key] = &c
	})
}

// remove deletes the entries for keys.
func (l *ledger) remove(ctx context.Context, keys ...string) error {
	return l.update(ctx, func(entries map[string]*Checkout) {
		for _, key := range keys {
			delete(entries, key)
		}
	})
}

// list returns all records sorted by namespace/name.
func (l *ledger) list() ([]Checkout, error) {
	l.mu.Lock()
	f, err := l.load()
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Checkout, 0, len(f.Checkouts))
	for _, c := range f.Checkouts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Locator().String() < out[j].Locator().String()
	})
	return out, nil
}

// get returns the record for loc, if any.
func (l *ledger) get(loc Locator) (Checkout, bool, error) {
	l.mu.Lock()
	f, err := l.load()
	l.mu.Unlock()
	if err != nil {
		return Checkout{}, false, err
	}
	c, ok := f.Checkouts[loc.String()]
	if !ok {
		return Checkout{}, false, nil
	}
	return *c, true, nil
}
