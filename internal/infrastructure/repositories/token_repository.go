package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/ports"
)

// refreshTokenPrefix prefixes refresh token keys.
// It's a static prefix and not a credential; silence gosec G101 here.
const refreshTokenPrefix = "refresh_token" //nolint:gosec

// TokenRepository keeps the single active refresh token per user in the
// ephemeral store with a TTL matching the token's own lifetime.
type TokenRepository struct {
	store  ports.EphemeralStore
	logger *logrus.Logger
}

func NewTokenRepository(store ports.EphemeralStore, logger *logrus.Logger) *TokenRepository {
	return &TokenRepository{store: store, logger: logger}
}

// Ensure TokenRepository implements ports.TokenRepository
var _ ports.TokenRepository = (*TokenRepository)(nil)

func (r *TokenRepository) key(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", refreshTokenPrefix, userID.String())
}

// StoreRefreshToken overwrites the user's refresh token record. Older
// sessions lose their refresh capability the moment this write lands.
func (r *TokenRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if err := r.store.Set(ctx, r.key(userID), []byte(token), ttl); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": userID}).Debug("tokens: refresh token stored")
	}
	return nil
}

func (r *TokenRepository) GetRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	b, ok, err := r.store.Get(ctx, r.key(userID))
	if err != nil {
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	if !ok {
		return "", auth.ErrInvalidRefreshToken
	}
	return string(b), nil
}

func (r *TokenRepository) DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error {
	if err := r.store.Delete(ctx, r.key(userID)); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}
