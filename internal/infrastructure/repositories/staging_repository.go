package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/clavisauth/clavis/internal/core/ports"
)

const (
	// verifyKeyPrefix prefixes staging keys for pending registrations.
	// It's a static prefix and not a credential; silence gosec G101 here.
	verifyKeyPrefix = "verify" //nolint:gosec
	otpKeyPrefix    = "otp"
)

// StagingRepository keeps the transient records of both flows in the
// ephemeral store. Reclamation is entirely TTL-driven.
type StagingRepository struct {
	store  ports.EphemeralStore
	logger *logrus.Logger
}

func NewStagingRepository(store ports.EphemeralStore, logger *logrus.Logger) *StagingRepository {
	return &StagingRepository{store: store, logger: logger}
}

// Ensure StagingRepository implements ports.StagingRepository
var _ ports.StagingRepository = (*StagingRepository)(nil)

func (r *StagingRepository) verifyKey(token string) string {
	return fmt.Sprintf("%s:%s", verifyKeyPrefix, token)
}

func (r *StagingRepository) otpKey(email string) string {
	return fmt.Sprintf("%s:%s", otpKeyPrefix, email)
}

func (r *StagingRepository) StagePendingRegistration(ctx context.Context, token string, pending *user.PendingRegistration, ttl time.Duration) error {
	b, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending registration: %w", err)
	}

	if err := r.store.Set(ctx, r.verifyKey(token), b, ttl); err != nil {
		return fmt.Errorf("failed to stage pending registration: %w", err)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"email": pending.Email, "ttl": ttl}).Debug("staging: pending registration staged")
	}
	return nil
}

func (r *StagingRepository) ConsumePendingRegistration(ctx context.Context, token string) (*user.PendingRegistration, error) {
	key := r.verifyKey(token)

	b, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending registration: %w", err)
	}
	if !ok {
		return nil, auth.ErrTokenExpired
	}

	// Delete before use so a replay of the same token can never promote the
	// staged data twice.
	if err := r.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to consume pending registration: %w", err)
	}

	var pending user.PendingRegistration
	if err := json.Unmarshal(b, &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending registration: %w", err)
	}

	return &pending, nil
}

func (r *StagingRepository) StageOTP(ctx context.Context, email, otp string, ttl time.Duration) error {
	// Set overwrites any prior OTP for the email: last write wins.
	if err := r.store.Set(ctx, r.otpKey(email), []byte(otp), ttl); err != nil {
		return fmt.Errorf("failed to stage otp: %w", err)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"email": email, "ttl": ttl}).Debug("staging: otp staged")
	}
	return nil
}

func (r *StagingRepository) GetOTP(ctx context.Context, email string) (string, error) {
	b, ok, err := r.store.Get(ctx, r.otpKey(email))
	if err != nil {
		return "", fmt.Errorf("failed to get otp: %w", err)
	}
	if !ok {
		return "", auth.ErrTokenExpired
	}
	return string(b), nil
}

func (r *StagingRepository) DeleteOTP(ctx context.Context, email string) error {
	if err := r.store.Delete(ctx, r.otpKey(email)); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}
