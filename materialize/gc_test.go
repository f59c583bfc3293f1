package materialize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartGC(t *testing.T) {
	h := newHarness(t, testSettings())
	path := h.materializeAt("app", h.now)

	later := h.now.Add(48 * time.Hour)
	h.m.now = func() time.Time { return later }

	stop := h.m.StartGC(context.Background(), 5*time.Millisecond, PruneOlderThan(24*time.Hour))
	defer stop()

	require.Eventually(t, func() bool {
		return !h.exists(path)
	}, 2*time.Second, 5*time.Millisecond)

	stop()
	stop()
}

func TestStartGC_StopsWithContext(t *testing.T) {
	s := testSettings()
	s.Ledger = false
	h := newHarness(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	stop := h.m.StartGC(ctx, time.Millisecond)

	// Prune fails without a ledger; the collector keeps running until ctx ends.
	time.Sleep(10 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		assert.Fail(t, "stop did not return after the context was cancelled")
	}
}
