package services

import (
	"context"
	"time"
)

// RunPeriodically invokes fn immediately and then once per interval until
// ctx is done. The tick time is passed through so passes agree on what
// "now" is.
func RunPeriodically(ctx context.Context, interval time.Duration, fn func(context.Context, time.Time)) {
	fn(ctx, time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(ctx, now)
		}
	}
}
