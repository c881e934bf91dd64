package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clavisauth/clavis/internal/core/ports"
)

// RateLimitRepository implements the fixed-window presence mark on the
// ephemeral store. A key either exists (blocked) or it doesn't (allowed);
// there is no counter and no partial decay.
type RateLimitRepository struct {
	store ports.EphemeralStore
}

func NewRateLimitRepository(store ports.EphemeralStore) *RateLimitRepository {
	return &RateLimitRepository{store: store}
}

// Ensure RateLimitRepository implements ports.RateLimitRepository
var _ ports.RateLimitRepository = (*RateLimitRepository)(nil)

// key builds the "<action>-rate-limit:<client>:<target>" mark key. Separate
// action prefixes keep register and login windows independent.
func (r *RateLimitRepository) mark(action, clientID, targetID string) string {
	return fmt.Sprintf("%s-rate-limit:%s:%s", action, clientID, targetID)
}

func (r *RateLimitRepository) Exists(ctx context.Context, action, clientID, targetID string) (bool, error) {
	_, ok, err := r.store.Get(ctx, r.mark(action, clientID, targetID))
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit mark: %w", err)
	}
	return ok, nil
}

func (r *RateLimitRepository) Mark(ctx context.Context, action, clientID, targetID string, ttl time.Duration) error {
	if err := r.store.Set(ctx, r.mark(action, clientID, targetID), []byte("1"), ttl); err != nil {
		return fmt.Errorf("failed to set rate limit mark: %w", err)
	}
	return nil
}
