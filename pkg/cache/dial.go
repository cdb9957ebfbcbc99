package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when a shared backend never answered its
// connection check.
var ErrUnavailable = errors.New("cache backend unavailable")

// Connection check schedule for shared backends. The wait doubles after
// every failed ping.
var (
	dialAttempts = 3
	dialDelay    = time.Second
)

// dial pings a freshly opened backend until it answers. A server that is
// still starting (compose, CI services) usually answers within a few
// seconds, so failures are retried; cancelling ctx ends the wait.
func dial(ctx context.Context, backend string, ping func(context.Context) error) error {
	delay := dialDelay
	var last error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		if last = ping(ctx); last == nil {
			return nil
		}
		if attempt == dialAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, backend, last)
}
