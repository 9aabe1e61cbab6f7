package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which external events were already handled.
// It is a fast path in front of the durable unique constraint: losing an
// entry is safe, a false "processed" answer is not, so implementations
// must only report keys they actually recorded.
type IdempotencyStore interface {
	// MarkProcessed records the key with a TTL. It returns true when the
	// key was newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the key was recorded and has not expired.
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// IdempotencyConfig controls how long processed keys are remembered.
type IdempotencyConfig struct {
	// TTL bounds the replay window. Providers redeliver webhooks for at
	// most a few days, so keys older than that can be forgotten.
	TTL time.Duration
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour}
}
