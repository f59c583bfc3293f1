package materialize

import (
	"context"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
)

// StartGC prunes with strategies every interval until ctx is done or the
// returned stop function is called. stop is safe to call more than once
// and returns after the collector goroutine has exited. Prune failures are
// logged and the next tick tries again.
func (m *Materializer) StartGC(ctx context.Context, interval time.Duration, strategies ...PruneStrategy) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := m.Prune(ctx, strategies...)
				if err != nil {
					if ctx.Err() == nil {
						clog.FromContext(ctx).Error("checkout gc failed", "error", err)
					}
					continue
				}
				if len(removed) > 0 {
					clog.FromContext(ctx).Info("checkout gc removed checkouts", "count", len(removed))
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
