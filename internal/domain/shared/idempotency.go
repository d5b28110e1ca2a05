package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which payment notification ids have already
// been handled. Providers redeliver webhooks aggressively, so the
// reconciler records each notification before acting on it.
type IdempotencyStore interface {
	// MarkProcessed records the notification id with a TTL. It reports
	// true when the id was new and false when it had been seen before.
	MarkProcessed(ctx context.Context, notificationID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the notification id was already handled.
	IsProcessed(ctx context.Context, notificationID string) (bool, error)

	Close() error
}

// IdempotencyConfig tunes notification deduplication.
type IdempotencyConfig struct {
	// TTL bounds how long a notification id is remembered. Once it
	// expires the same id is handled again.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig remembers notifications for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
