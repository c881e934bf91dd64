package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredential covers both "no such user" and "wrong password";
	// callers must not reveal which one happened.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrThrottled is returned when the fixed-window rate limit is active.
	ErrThrottled = errors.New("too many requests")
	// ErrTokenExpired covers an absent or expired verification token or OTP.
	ErrTokenExpired = errors.New("token expired or invalid")
	// ErrInvalidOTP is returned for a present-but-mismatched OTP. The staged
	// OTP survives so the user can retry within the TTL.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrInvalidRefreshToken covers a missing, expired, malformed or
	// superseded refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// LoginRequest represents the credentials step of the login flow
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// VerifyOTPRequest represents the second-factor step of the login flow
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

func (r *VerifyOTPRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.OTP = strings.TrimSpace(r.OTP)
}

// TokenPair is the result of a successful session issuance. ExpiresIn is the
// access token lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims is the access token payload.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}
