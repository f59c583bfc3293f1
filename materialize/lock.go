package materialize

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/danjacques/gofslock/fslock"

	"github.com/jmgilman/gitfarm/errors"
)

// defaultLockPoll is how long a waiter sleeps between attempts on a held
// file lock.
const defaultLockPoll = 250 * time.Millisecond

// locker serializes work per key inside the process and, when files is
// set, across processes sharing the working root.
type locker struct {
	files bool
	poll  time.Duration

	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func newLocker(files bool) *locker {
	return &locker{
		files: files,
		poll:  defaultLockPoll,
		keys:  make(map[string]*keyLock),
	}
}

// with runs fn while holding the lock for key. lockPath names the lock file
// used when file locking is enabled. Waiting ends with CodeLockUnavailable
// when ctx is done.
func (l *locker) with(ctx context.Context, key, lockPath string, fn func() error) error {
	release, err := l.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	if !l.files {
		return fn()
	}

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to create lock directory",
			map[string]any{"lock": lockPath})
	}

	var ran bool
	err = fslock.WithBlocking(lockPath, l.blocker(ctx, lockPath), func() error {
		ran = true
		return fn()
	})
	if err != nil && !ran {
		return errors.WrapWithContext(err, errors.CodeLockUnavailable, "failed to acquire repository lock",
			map[string]any{"lock": lockPath})
	}
	return err
}

// acquire takes the in-process lock for key.
func (l *locker) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.keys[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.keys[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	drop := func() {
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.keys, key)
		}
		l.mu.Unlock()
	}

	select {
	case kl.sem <- struct{}{}:
		return func() {
			<-kl.sem
			drop()
		}, nil
	case <-ctx.Done():
		drop()
		return nil, errors.WrapWithContext(ctx.Err(), errors.CodeLockUnavailable,
			"gave up waiting for repository lock", map[string]any{"key": key})
	}
}

// blocker sleeps between attempts on a held file lock and stops retrying
// once ctx is done.
func (l *locker) blocker(ctx context.Context, lockPath string) fslock.Blocker {
	return func() error {
		clog.FromContext(ctx).Debug("repository lock held, waiting", "lock", lockPath, "retry", l.poll)

		t := time.NewTimer(l.poll)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}
