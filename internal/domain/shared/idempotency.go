package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys so a retried
// mutation is not applied twice.
type IdempotencyStore interface {
	// Reserve claims the key for ttl. It returns false if the key is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a reserved key so the request may be retried.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
