package materialize

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danjacques/gofslock/fslock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/gitfarm/errors"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := newLocker(false)

	var active, maxActive int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.with(context.Background(), "org/app", "", func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, l.keys, "idle keys must be released")
}

func TestLocker_DifferentKeysIndependent(t *testing.T) {
	l := newLocker(false)
	entered := make(chan struct{})

	go func() {
		_ = l.with(context.Background(), "org/a", "", func() error {
			<-entered
			return nil
		})
	}()

	err := l.with(context.Background(), "org/b", "", func() error {
		close(entered)
		return nil
	})
	require.NoError(t, err)
}

func TestLocker_CancelWhileWaiting(t *testing.T) {
	l := newLocker(false)
	hold := make(chan struct{})
	held := make(chan struct{})

	go func() {
		_ = l.with(context.Background(), "k", "", func() error {
			close(held)
			<-hold
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.with(ctx, "k", "", func() error { return nil })
	require.Error(t, err)
	assert.Equal(t, errors.CodeLockUnavailable, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))

	close(hold)
}

func TestLocker_FileLock(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "org", ".app.lock")

	l := newLocker(true)
	l.poll = 5 * time.Millisecond

	ran := false
	require.NoError(t, l.with(context.Background(), "org/app", lockPath, func() error {
		ran = true
		assert.FileExists(t, lockPath)
		return nil
	}))
	assert.True(t, ran)
}

func TestLocker_FileLockHeldElsewhere(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, ".app.lock")

	h, err := fslock.Lock(lockPath)
	require.NoError(t, err)
	defer h.Unlock()

	l := newLocker(true)
	l.poll = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = l.with(ctx, "org/app", lockPath, func() error {
		t.Fatal("must not run while the file lock is held")
		return nil
	})
	assert.Equal(t, errors.CodeLockUnavailable, errors.GetCode(err))
}
