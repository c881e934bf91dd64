package ports

import (
	"context"
	"time"

	"github.com/clavisauth/clavis/internal/core/domain/user"
)

// StagingRepository holds the transient records of both flows: pending
// registrations keyed by verification token and pending OTPs keyed by
// normalized email. Expiry is enforced by the underlying store.
type StagingRepository interface {
	// StagePendingRegistration stores the staged registration under its
	// verification token.
	StagePendingRegistration(ctx context.Context, token string, pending *user.PendingRegistration, ttl time.Duration) error
	// ConsumePendingRegistration reads and deletes the staged registration.
	// Returns auth.ErrTokenExpired when the token is absent or expired; the
	// delete makes the token single-use.
	ConsumePendingRegistration(ctx context.Context, token string) (*user.PendingRegistration, error)

	// StageOTP stores the pending OTP for the email, overwriting any prior
	// one (last write wins, no multi-OTP queue).
	StageOTP(ctx context.Context, email, otp string, ttl time.Duration) error
	// GetOTP returns the staged OTP. Returns auth.ErrTokenExpired when absent
	// or expired. The record is NOT deleted; mismatched submissions may retry
	// until expiry.
	GetOTP(ctx context.Context, email string) (string, error)
	// DeleteOTP removes the staged OTP after a successful match.
	DeleteOTP(ctx context.Context, email string) error
}

// RegistrationService drives the registration state machine.
type RegistrationService interface {
	// Register validates nothing (input shape is the transport's job),
	// rate-checks, stages the registration and emails a verification link.
	// The caller responds identically whether or not the email was already
	// registered.
	Register(ctx context.Context, req *user.RegisterRequest, clientID string) error
	// Verify consumes the single-use verification token and promotes the
	// staged data into a durable user.
	Verify(ctx context.Context, token string) (*user.User, error)
}
