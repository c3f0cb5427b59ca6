package transport

import (
	"context"
	"log/slog"
	"time"
)

// Join connects r, retrying with exponential backoff until it succeeds or
// ctx is done. Rooms reconnect on their own once joined.
func Join(ctx context.Context, r Room, logger *slog.Logger) error {
	backoff := minReconnectBackoff
	for attempt := 1; ; attempt++ {
		err := r.Connect(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Warn("room join failed, retrying",
			"identity", r.Identity(),
			"attempt", attempt,
			"backoff", backoff,
			"error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, maxReconnectBackoff)
	}
}
