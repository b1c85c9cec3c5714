package repokit

import (
	"context"
	"time"

	"grantwise/internal/platform/store"
)

// PingWithin pings p with timeout applied when ctx has no deadline. A nil p
// reports nil so optional backends read as healthy-but-absent
func PingWithin(ctx context.Context, p store.Pinger, timeout time.Duration) error {
	if p == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.Ping(ctx)
}

// AsPinger returns v as a Pinger when it has a Ping method
func AsPinger(v any) (store.Pinger, bool) {
	p, ok := v.(store.Pinger)
	return p, ok
}
