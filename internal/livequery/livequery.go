// Package livequery refreshes chapter views by periodically re-issuing a
// read query. The remote backend has no push channel, so bounded staleness
// via polling is the designed trade-off for single-user usage.
package livequery

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the staleness bound for remote-backed live views.
const DefaultInterval = 2 * time.Second

// Poller re-runs query on a fixed interval and hands each result to apply.
// It stops when the consuming view's context is cancelled, and a result
// arriving after cancellation is never applied.
type Poller[T any] struct {
	Interval time.Duration
	Query    func(ctx context.Context) (T, error)
	Apply    func(T)
	Log      *zap.Logger
}

// Run polls until ctx is cancelled. The query runs once immediately so the
// view is populated before the first tick. Query errors are logged and the
// previous result stays in place, read failures here are not fatal.
func (p *Poller[T]) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller[T]) refresh(ctx context.Context) {
	result, err := p.Query(ctx)
	if err != nil {
		if p.Log != nil {
			p.Log.Warn("live query refresh failed", zap.Error(err))
		}
		return
	}
	// The view may have navigated away while the query was in flight;
	// never apply a result for a dead context.
	if ctx.Err() != nil {
		return
	}
	p.Apply(result)
}
