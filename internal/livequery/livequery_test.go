package livequery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunAppliesImmediatelyAndOnTicks(t *testing.T) {
	var applied atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &Poller[int]{
		Interval: 5 * time.Millisecond,
		Query: func(ctx context.Context) (int, error) {
			return 42, nil
		},
		Apply: func(v int) {
			assert.Equal(t, 42, v)
			if applied.Add(1) >= 3 {
				cancel()
			}
		},
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, applied.Load(), int32(3))
}

func TestQueryErrorKeepsPolling(t *testing.T) {
	var calls atomic.Int32
	var applied atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &Poller[string]{
		Interval: 5 * time.Millisecond,
		Query: func(ctx context.Context) (string, error) {
			if calls.Add(1) == 1 {
				return "", errors.New("transient")
			}
			return "ok", nil
		},
		Apply: func(string) {
			applied.Add(1)
			cancel()
		},
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not recover from query error")
	}
	// The failed first refresh never reached Apply.
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
	assert.Equal(t, int32(1), applied.Load())
}

func TestResultAfterCancellationIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Poller[int]{
		Interval: time.Hour,
		Query: func(ctx context.Context) (int, error) {
			// Simulates the view navigating away while the query is in flight.
			cancel()
			return 7, nil
		},
		Apply: func(int) {
			t.Error("stale result must not be applied")
		},
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}
