package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/google/uuid"
)

// UserRepositoryMock is a lightweight mock for UserRepository
type UserRepositoryMock struct {
	CreateFn        func(ctx context.Context, u *user.User) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmailFn    func(ctx context.Context, email string) (*user.User, error)
	ExistsByEmailFn func(ctx context.Context, email string) (bool, error)
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFn != nil {
		return m.ExistsByEmailFn(ctx, email)
	}
	return false, nil
}

// StagingRepositoryMock is a lightweight mock for StagingRepository
type StagingRepositoryMock struct {
	StagePendingRegistrationFn   func(ctx context.Context, token string, pending *user.PendingRegistration, ttl time.Duration) error
	ConsumePendingRegistrationFn func(ctx context.Context, token string) (*user.PendingRegistration, error)
	StageOTPFn                   func(ctx context.Context, email, otp string, ttl time.Duration) error
	GetOTPFn                     func(ctx context.Context, email string) (string, error)
	DeleteOTPFn                  func(ctx context.Context, email string) error
}

func (m *StagingRepositoryMock) StagePendingRegistration(ctx context.Context, token string, pending *user.PendingRegistration, ttl time.Duration) error {
	if m.StagePendingRegistrationFn != nil {
		return m.StagePendingRegistrationFn(ctx, token, pending, ttl)
	}
	return nil
}
func (m *StagingRepositoryMock) ConsumePendingRegistration(ctx context.Context, token string) (*user.PendingRegistration, error) {
	if m.ConsumePendingRegistrationFn != nil {
		return m.ConsumePendingRegistrationFn(ctx, token)
	}
	return nil, auth.ErrTokenExpired
}
func (m *StagingRepositoryMock) StageOTP(ctx context.Context, email, otp string, ttl time.Duration) error {
	if m.StageOTPFn != nil {
		return m.StageOTPFn(ctx, email, otp, ttl)
	}
	return nil
}
func (m *StagingRepositoryMock) GetOTP(ctx context.Context, email string) (string, error) {
	if m.GetOTPFn != nil {
		return m.GetOTPFn(ctx, email)
	}
	return "", auth.ErrTokenExpired
}
func (m *StagingRepositoryMock) DeleteOTP(ctx context.Context, email string) error {
	if m.DeleteOTPFn != nil {
		return m.DeleteOTPFn(ctx, email)
	}
	return nil
}

// TokenRepositoryMock is a lightweight mock for TokenRepository
type TokenRepositoryMock struct {
	StoreRefreshTokenFn  func(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	GetRefreshTokenFn    func(ctx context.Context, userID uuid.UUID) (string, error)
	DeleteRefreshTokenFn func(ctx context.Context, userID uuid.UUID) error
}

func (m *TokenRepositoryMock) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if m.StoreRefreshTokenFn != nil {
		return m.StoreRefreshTokenFn(ctx, userID, token, ttl)
	}
	return nil
}
func (m *TokenRepositoryMock) GetRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GetRefreshTokenFn != nil {
		return m.GetRefreshTokenFn(ctx, userID)
	}
	return "", auth.ErrInvalidRefreshToken
}
func (m *TokenRepositoryMock) DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteRefreshTokenFn != nil {
		return m.DeleteRefreshTokenFn(ctx, userID)
	}
	return nil
}

// RateLimitRepositoryMock is a lightweight mock for RateLimitRepository
type RateLimitRepositoryMock struct {
	ExistsFn func(ctx context.Context, action, clientID, targetID string) (bool, error)
	MarkFn   func(ctx context.Context, action, clientID, targetID string, ttl time.Duration) error
}

func (m *RateLimitRepositoryMock) Exists(ctx context.Context, action, clientID, targetID string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, action, clientID, targetID)
	}
	return false, nil
}
func (m *RateLimitRepositoryMock) Mark(ctx context.Context, action, clientID, targetID string, ttl time.Duration) error {
	if m.MarkFn != nil {
		return m.MarkFn(ctx, action, clientID, targetID, ttl)
	}
	return nil
}

// RateLimiterMock is a lightweight mock for RateLimiter
type RateLimiterMock struct {
	CheckFn func(ctx context.Context, action, clientID, targetID string) (bool, error)
	MarkFn  func(ctx context.Context, action, clientID, targetID string) error
}

func (m *RateLimiterMock) Check(ctx context.Context, action, clientID, targetID string) (bool, error) {
	if m.CheckFn != nil {
		return m.CheckFn(ctx, action, clientID, targetID)
	}
	return true, nil
}
func (m *RateLimiterMock) Mark(ctx context.Context, action, clientID, targetID string) error {
	if m.MarkFn != nil {
		return m.MarkFn(ctx, action, clientID, targetID)
	}
	return nil
}

// EmailServiceMock is a lightweight mock for EmailService
type EmailServiceMock struct {
	SendVerificationEmailFn func(ctx context.Context, email, token string) error
	SendOTPEmailFn          func(ctx context.Context, email, otp string) error
}

func (m *EmailServiceMock) SendVerificationEmail(ctx context.Context, email, token string) error {
	if m.SendVerificationEmailFn != nil {
		return m.SendVerificationEmailFn(ctx, email, token)
	}
	return nil
}
func (m *EmailServiceMock) SendOTPEmail(ctx context.Context, email, otp string) error {
	if m.SendOTPEmailFn != nil {
		return m.SendOTPEmailFn(ctx, email, otp)
	}
	return nil
}

// RegistrationServiceMock is a lightweight mock for RegistrationService
type RegistrationServiceMock struct {
	RegisterFn func(ctx context.Context, req *user.RegisterRequest, clientID string) error
	VerifyFn   func(ctx context.Context, token string) (*user.User, error)
}

func (m *RegistrationServiceMock) Register(ctx context.Context, req *user.RegisterRequest, clientID string) error {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, req, clientID)
	}
	return nil
}
func (m *RegistrationServiceMock) Verify(ctx context.Context, token string) (*user.User, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	return nil, auth.ErrTokenExpired
}

// AuthServiceMock is a lightweight mock for AuthService
type AuthServiceMock struct {
	LoginFn               func(ctx context.Context, req *auth.LoginRequest, clientID string) error
	VerifyOTPFn           func(ctx context.Context, req *auth.VerifyOTPRequest) (*user.User, *auth.TokenPair, error)
	RefreshFn             func(ctx context.Context, refreshToken string) (*user.User, *auth.TokenPair, error)
	GenerateTokensFn      func(ctx context.Context, u *user.User) (*auth.TokenPair, error)
	ValidateAccessTokenFn func(tokenString string) (*auth.Claims, error)
}

func (m *AuthServiceMock) Login(ctx context.Context, req *auth.LoginRequest, clientID string) error {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req, clientID)
	}
	return nil
}
func (m *AuthServiceMock) VerifyOTP(ctx context.Context, req *auth.VerifyOTPRequest) (*user.User, *auth.TokenPair, error) {
	if m.VerifyOTPFn != nil {
		return m.VerifyOTPFn(ctx, req)
	}
	return nil, nil, auth.ErrTokenExpired
}
func (m *AuthServiceMock) Refresh(ctx context.Context, refreshToken string) (*user.User, *auth.TokenPair, error) {
	if m.RefreshFn != nil {
		return m.RefreshFn(ctx, refreshToken)
	}
	return nil, nil, auth.ErrInvalidRefreshToken
}
func (m *AuthServiceMock) GenerateTokens(ctx context.Context, u *user.User) (*auth.TokenPair, error) {
	if m.GenerateTokensFn != nil {
		return m.GenerateTokensFn(ctx, u)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *AuthServiceMock) ValidateAccessToken(tokenString string) (*auth.Claims, error) {
	if m.ValidateAccessTokenFn != nil {
		return m.ValidateAccessTokenFn(tokenString)
	}
	return nil, fmt.Errorf("not implemented")
}
