// Package poller implements the consumer-side polling contract: fetch a
// status snapshot at a fixed interval until it reports a terminal state.
// The same loop backs bulk-job progress (2s) and support-conversation
// refresh (3-5s) when the push channel is unavailable.
package poller

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Fetch returns the latest snapshot and whether it is terminal. Returning an
// error keeps the loop going; polling only stops on a terminal snapshot or a
// cancelled context.
type Fetch[T any] func(ctx context.Context) (T, bool, error)

// Poll fetches immediately, then on every interval tick, and returns the
// first terminal snapshot.
func Poll[T any](ctx context.Context, clock clockwork.Clock, interval time.Duration, fetch Fetch[T]) (T, error) {
	var zero T

	snapshot, terminal, err := fetch(ctx)
	if err == nil && terminal {
		return snapshot, nil
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-ticker.Chan():
			snapshot, terminal, err = fetch(ctx)
			if err != nil {
				continue
			}
			if terminal {
				return snapshot, nil
			}
		}
	}
}
