package services

import (
	"context"
	"fmt"
	"time"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/clavisauth/clavis/internal/core/ports"
	"github.com/clavisauth/clavis/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RegistrationService drives the registration state machine. No durable
// record exists until the emailed token is verified; everything before that
// lives in the ephemeral store and dies by TTL.
type RegistrationService struct {
	users      ports.UserRepository
	staging    ports.StagingRepository
	limiter    ports.RateLimiter
	mailer     ports.EmailService
	pendingTTL time.Duration
	logger     *logrus.Logger
}

func NewRegistrationService(users ports.UserRepository, staging ports.StagingRepository, limiter ports.RateLimiter, mailer ports.EmailService, pendingTTL time.Duration, logger *logrus.Logger) ports.RegistrationService {
	return &RegistrationService{
		users:      users,
		staging:    staging,
		limiter:    limiter,
		mailer:     mailer,
		pendingTTL: pendingTTL,
		logger:     logger,
	}
}

// Register stages a pending registration and emails the verification link.
// The nil return is deliberately identical whether or not the email already
// has an account: an existing address is silently skipped (nothing staged,
// no mail) so the response never reveals which addresses are registered.
func (s *RegistrationService) Register(ctx context.Context, req *user.RegisterRequest, clientID string) error {
	allowed, err := s.limiter.Check(ctx, ActionRegister, clientID, req.Email)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return auth.ErrThrottled
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("uniqueness check failed: %w", err)
	}
	if exists {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": req.Email}).Info("registration: email already registered, skipping staging")
		}
		// Mark the window anyway so repeated probing of a known address is
		// throttled the same as a fresh registration.
		if err := s.limiter.Mark(ctx, ActionRegister, clientID, req.Email); err != nil {
			return fmt.Errorf("rate limit mark failed: %w", err)
		}
		return nil
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return err
	}

	pending := &user.PendingRegistration{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := s.staging.StagePendingRegistration(ctx, token, pending, s.pendingTTL); err != nil {
		return err
	}

	// Mail failure fails the whole request: the rate limit is not marked and
	// the staged record is left to expire.
	if err := s.mailer.SendVerificationEmail(ctx, req.Email, token); err != nil {
		return err
	}

	if err := s.limiter.Mark(ctx, ActionRegister, clientID, req.Email); err != nil {
		return fmt.Errorf("rate limit mark failed: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"email": req.Email}).Info("registration: verification email sent")
	}
	return nil
}

// Verify consumes the single-use token and promotes the staged registration
// into a durable user. A replay of the same token, or an expired one, yields
// auth.ErrTokenExpired.
func (s *RegistrationService) Verify(ctx context.Context, token string) (*user.User, error) {
	pending, err := s.staging.ConsumePendingRegistration(ctx, token)
	if err != nil {
		return nil, err
	}

	// Re-check uniqueness: a duplicate registration may have been verified
	// during the staging window. The unique index on users.email backstops
	// the remaining race; a losing concurrent create reports ErrEmailTaken.
	exists, err := s.users.ExistsByEmail(ctx, pending.Email)
	if err != nil {
		return nil, fmt.Errorf("uniqueness check failed: %w", err)
	}
	if exists {
		return nil, user.ErrEmailTaken
	}

	now := time.Now()
	newUser := &user.User{
		ID:           uuid.New(),
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": newUser.ID, "email": newUser.Email}).Info("registration: user created")
	}
	return newUser, nil
}
