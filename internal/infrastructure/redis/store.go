package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store implements ports.EphemeralStore on a Redis client. Redis handles TTL
// expiry; no caller ever sweeps expired keys.
type Store struct {
	r redis.Cmdable
	// optional key prefix to namespace entries
	prefix string
}

// NewStore creates a new Redis-backed ephemeral store.
func NewStore(r redis.Cmdable, prefix string) *Store {
	return &Store{r: r, prefix: prefix}
}

func (s *Store) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get implements EphemeralStore.Get.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ns := s.namespaced(key)
	val, err := s.r.Get(ctx, ns).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements EphemeralStore.Set.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ns := s.namespaced(key)
	return s.r.Set(ctx, ns, value, ttl).Err()
}

// Delete implements EphemeralStore.Delete.
func (s *Store) Delete(ctx context.Context, key string) error {
	ns := s.namespaced(key)
	return s.r.Del(ctx, ns).Err()
}
