package internal

import (
	"context"
	"time"
)

const defaultStoreTimeout = 5 * time.Second

// WithTimeout bounds background work that has no request context of its own.
// A zero or negative duration falls back to the default store timeout.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, duration)
}
