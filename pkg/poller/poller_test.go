package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Status    string
	Processed int
}

func TestPollReturnsImmediatelyWhenTerminal(t *testing.T) {
	clock := clockwork.NewFakeClock()

	var calls atomic.Int32
	snap, err := Poll(context.Background(), clock, 2*time.Second, func(context.Context) (snapshot, bool, error) {
		calls.Add(1)
		return snapshot{Status: "completed", Processed: 5}, true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "completed", snap.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPollTicksUntilTerminal(t *testing.T) {
	clock := clockwork.NewFakeClock()

	var calls atomic.Int32
	done := make(chan struct{})
	var snap snapshot
	var pollErr error

	go func() {
		defer close(done)
		snap, pollErr = Poll(context.Background(), clock, 2*time.Second, func(context.Context) (snapshot, bool, error) {
			n := calls.Add(1)
			if n < 4 {
				return snapshot{Status: "processing", Processed: int(n)}, false, nil
			}
			return snapshot{Status: "completed", Processed: 4}, true, nil
		})
	}()

	// One immediate fetch, then three ticks to reach the terminal snapshot.
	// Wait for each fetch to complete before advancing again: the fake
	// ticker re-registers itself inside Advance and drops ticks while its
	// 1-buffered channel is full, so advancing early would lose ticks.
	for i := 0; i < 3; i++ {
		require.Eventually(t, func() bool { return calls.Load() == int32(i+1) },
			time.Second, time.Millisecond)
		clock.BlockUntilContext(context.Background(), 1)
		clock.Advance(2 * time.Second)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not finish")
	}
	require.NoError(t, pollErr)
	assert.Equal(t, "completed", snap.Status)
	assert.Equal(t, 4, snap.Processed)
	assert.Equal(t, int32(4), calls.Load())
}

func TestPollKeepsGoingPastFetchErrors(t *testing.T) {
	clock := clockwork.NewFakeClock()

	var calls atomic.Int32
	done := make(chan struct{})
	var snap snapshot
	var pollErr error

	go func() {
		defer close(done)
		snap, pollErr = Poll(context.Background(), clock, time.Second, func(context.Context) (snapshot, bool, error) {
			n := calls.Add(1)
			if n < 3 {
				return snapshot{}, false, errors.New("transient network error")
			}
			return snapshot{Status: "failed"}, true, nil
		})
	}()

	for i := 0; i < 2; i++ {
		require.Eventually(t, func() bool { return calls.Load() == int32(i+1) },
			time.Second, time.Millisecond)
		clock.BlockUntilContext(context.Background(), 1)
		clock.Advance(time.Second)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not finish")
	}
	require.NoError(t, pollErr)
	assert.Equal(t, "failed", snap.Status)
}

func TestPollStopsOnContextCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var pollErr error

	go func() {
		defer close(done)
		_, pollErr = Poll(ctx, clock, time.Second, func(context.Context) (snapshot, bool, error) {
			return snapshot{Status: "processing"}, false, nil
		})
	}()

	clock.BlockUntilContext(context.Background(), 1)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not stop on cancel")
	}
	require.ErrorIs(t, pollErr, context.Canceled)
}
