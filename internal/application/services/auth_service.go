package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	config "github.com/clavisauth/clavis/configs"
	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/clavisauth/clavis/internal/core/ports"
	"github.com/clavisauth/clavis/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthService drives the login/OTP state machine. A password match alone
// never yields a session; the staged OTP must be exchanged first.
type AuthService struct {
	users     ports.UserRepository
	staging   ports.StagingRepository
	tokenRepo ports.TokenRepository
	limiter   ports.RateLimiter
	mailer    ports.EmailService
	jwtConfig *config.JWTConfig
	otpTTL    time.Duration
	logger    *logrus.Logger
}

func NewAuthService(users ports.UserRepository, staging ports.StagingRepository, tokenRepo ports.TokenRepository, limiter ports.RateLimiter, mailer ports.EmailService, jwtConfig *config.JWTConfig, otpTTL time.Duration, logger *logrus.Logger) ports.AuthService {
	return &AuthService{
		users:     users,
		staging:   staging,
		tokenRepo: tokenRepo,
		limiter:   limiter,
		mailer:    mailer,
		jwtConfig: jwtConfig,
		otpTTL:    otpTTL,
		logger:    logger,
	}
}

// Login checks credentials and stages a one-time passcode. Unknown email and
// wrong password both return auth.ErrInvalidCredential so the response leaks
// nothing about which one failed.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest, clientID string) error {
	allowed, err := s.limiter.Check(ctx, ActionLogin, clientID, req.Email)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return auth.ErrThrottled
	}

	foundUser, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return auth.ErrInvalidCredential
		}
		return fmt.Errorf("user lookup failed: %w", err)
	}

	if !utils.VerifyPassword(req.Password, foundUser.PasswordHash) {
		return auth.ErrInvalidCredential
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}

	// Overwrites any pending OTP for this email: last write wins.
	if err := s.staging.StageOTP(ctx, foundUser.Email, otp, s.otpTTL); err != nil {
		return err
	}

	if err := s.mailer.SendOTPEmail(ctx, foundUser.Email, otp); err != nil {
		return err
	}

	if err := s.limiter.Mark(ctx, ActionLogin, clientID, req.Email); err != nil {
		return fmt.Errorf("rate limit mark failed: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"email": foundUser.Email}).Info("login: otp sent")
	}
	return nil
}

// VerifyOTP exchanges the staged OTP for an authenticated session. A
// mismatched submission leaves the staged OTP in place so the user can retry
// until the TTL runs out; only a correct match consumes it.
func (s *AuthService) VerifyOTP(ctx context.Context, req *auth.VerifyOTPRequest) (*user.User, *auth.TokenPair, error) {
	stored, err := s.staging.GetOTP(ctx, req.Email)
	if err != nil {
		return nil, nil, err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.OTP)) != 1 {
		return nil, nil, auth.ErrInvalidOTP
	}

	if err := s.staging.DeleteOTP(ctx, req.Email); err != nil {
		return nil, nil, err
	}

	foundUser, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, auth.ErrInvalidCredential
		}
		return nil, nil, fmt.Errorf("user lookup failed: %w", err)
	}

	tokens, err := s.GenerateTokens(ctx, foundUser)
	if err != nil {
		return nil, nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": foundUser.ID}).Info("login: session issued")
	}
	return foundUser, tokens, nil
}

// Refresh validates a presented refresh token against the single stored
// record and rotates the session. Every failure mode collapses into
// auth.ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*user.User, *auth.TokenPair, error) {
	userID, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, auth.ErrInvalidRefreshToken
	}

	stored, err := s.tokenRepo.GetRefreshToken(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	// Only the most recently issued refresh token is honored; anything else
	// was superseded by a later login.
	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return nil, nil, auth.ErrInvalidRefreshToken
	}

	foundUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, auth.ErrInvalidRefreshToken
		}
		return nil, nil, fmt.Errorf("user lookup failed: %w", err)
	}

	tokens, err := s.GenerateTokens(ctx, foundUser)
	if err != nil {
		return nil, nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": foundUser.ID}).Info("refresh: session rotated")
	}
	return foundUser, tokens, nil
}
