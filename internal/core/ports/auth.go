package ports

import (
	"context"
	"time"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/google/uuid"
)

// TokenRepository stores the single active refresh token per user. Each store
// overwrites the previous record, implicitly invalidating older sessions once
// their short-lived access tokens run out.
type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	// GetRefreshToken returns the currently valid refresh token for the user.
	// Returns auth.ErrInvalidRefreshToken when absent or expired.
	GetRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)
	DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error
}

// AuthService drives the login/OTP state machine and session issuance.
type AuthService interface {
	// Login checks credentials, stages a one-time passcode and emails it.
	// Returns auth.ErrInvalidCredential for unknown email and wrong password
	// alike.
	Login(ctx context.Context, req *auth.LoginRequest, clientID string) error
	// VerifyOTP exchanges a staged OTP for an authenticated session. This is
	// the sole path that produces tokens.
	VerifyOTP(ctx context.Context, req *auth.VerifyOTPRequest) (*user.User, *auth.TokenPair, error)
	// Refresh validates a presented refresh token against the stored record
	// and rotates the session.
	Refresh(ctx context.Context, refreshToken string) (*user.User, *auth.TokenPair, error)
	// GenerateTokens mints the access/refresh pair for a user and persists
	// the refresh token as the single active record.
	GenerateTokens(ctx context.Context, u *user.User) (*auth.TokenPair, error)
	// ValidateAccessToken verifies an access token and returns its claims.
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}
