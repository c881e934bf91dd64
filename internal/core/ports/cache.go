package ports

import (
	"context"
	"time"
)

// EphemeralStore is the TTL-capable key-value contract shared by every
// stateful step of the flows: pending registrations, login OTPs, rate-limit
// marks and refresh tokens. Store-enforced expiry is the sole reclamation
// mechanism; callers never sweep. Operations are atomic at single-key
// granularity, which is all the flows rely on.
type EphemeralStore interface {
	// Get returns the raw bytes for key. ok=false if absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key, replacing any prior value, with TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}
