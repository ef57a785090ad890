package rowcache

import (
	"context"
	"time"
)

// Driver decides when refreshes fire. The interval driver polls on a fixed
// period; a push transport can implement the same interface later without
// touching the merge or aggregate contracts.
type Driver interface {
	Run(ctx context.Context, refresh func(ctx context.Context))
}

// IntervalDriver refreshes immediately on start and then on every tick until
// the context is cancelled.
type IntervalDriver struct {
	Every time.Duration
}

func (d IntervalDriver) Run(ctx context.Context, refresh func(ctx context.Context)) {
	refresh(ctx)
	ticker := time.NewTicker(d.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh(ctx)
		}
	}
}
