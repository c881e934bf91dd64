package ports

import (
	"context"
	"time"
)

// RateLimitRepository provides the low-level presence-mark operations backing
// the fixed-window guard. Implementations must be concurrency-safe.
type RateLimitRepository interface {
	// Exists reports whether a mark is currently set for the key triple.
	Exists(ctx context.Context, action, clientID, targetID string) (bool, error)
	// Mark sets the sentinel for the key triple with the window TTL. The key
	// stays blocked for exactly the TTL, then fully resets.
	Mark(ctx context.Context, action, clientID, targetID string, ttl time.Duration) error
}

// RateLimiter is the abuse guard applied before and after sensitive actions.
// Register and login use distinct action namespaces so a block on one never
// affects the other.
type RateLimiter interface {
	// Check reports whether the action is permitted for the identity pair.
	Check(ctx context.Context, action, clientID, targetID string) (bool, error)
	// Mark records a completed action, blocking the pair for the window.
	Mark(ctx context.Context, action, clientID, targetID string) error
}
