package shared

import (
	"context"
	"time"
)

// IdempotencyStore records which externally delivered messages (payment
// webhooks, broker events) were already handled
type IdempotencyStore interface {
	// MarkProcessed returns true when key was not seen before
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget removes key so a failed delivery can be retried
	Forget(ctx context.Context, key string) error
}
