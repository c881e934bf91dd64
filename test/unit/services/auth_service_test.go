package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	config "github.com/clavisauth/clavis/configs"
	"github.com/clavisauth/clavis/internal/application/services"
	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/clavisauth/clavis/internal/core/ports"
	"github.com/clavisauth/clavis/internal/utils"
	"github.com/clavisauth/clavis/test/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWTConfig = &config.JWTConfig{
	AccessSecret:    "test-access-secret",
	RefreshSecret:   "test-refresh-secret",
	AccessTokenTTL:  time.Minute,
	RefreshTokenTTL: 7 * 24 * time.Hour,
}

func knownUser(t *testing.T, password string) *user.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &user.User{
		ID:           uuid.New(),
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: hash,
		Role:         user.RoleUser,
	}
}

func newAuthService(users ports.UserRepository, staging ports.StagingRepository, tokenRepo ports.TokenRepository, limiter ports.RateLimiter, mailer ports.EmailService) ports.AuthService {
	if users == nil {
		users = &mocks.UserRepositoryMock{}
	}
	if staging == nil {
		staging = &mocks.StagingRepositoryMock{}
	}
	if tokenRepo == nil {
		tokenRepo = &mocks.TokenRepositoryMock{}
	}
	if limiter == nil {
		limiter = &mocks.RateLimiterMock{}
	}
	if mailer == nil {
		mailer = &mocks.EmailServiceMock{}
	}
	return services.NewAuthService(users, staging, tokenRepo, limiter, mailer, testJWTConfig, 5*time.Minute, nil)
}

func TestLoginStagesOTP(t *testing.T) {
	u := knownUser(t, "password123")
	var stagedOTP, mailedOTP string
	marked := false

	users := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
			assert.Equal(t, "ada@example.com", email)
			return u, nil
		},
	}
	staging := &mocks.StagingRepositoryMock{
		StageOTPFn: func(ctx context.Context, email, otp string, ttl time.Duration) error {
			stagedOTP = otp
			assert.Equal(t, 5*time.Minute, ttl)
			return nil
		},
	}
	mailer := &mocks.EmailServiceMock{
		SendOTPEmailFn: func(ctx context.Context, email, otp string) error {
			mailedOTP = otp
			return nil
		},
	}
	limiter := &mocks.RateLimiterMock{
		MarkFn: func(ctx context.Context, action, clientID, targetID string) error {
			marked = true
			assert.Equal(t, services.ActionLogin, action)
			return nil
		},
	}

	svc := newAuthService(users, staging, nil, limiter, mailer)
	err := svc.Login(context.Background(), &auth.LoginRequest{Email: "ada@example.com", Password: "password123"}, "1.2.3.4")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), stagedOTP)
	assert.Equal(t, stagedOTP, mailedOTP)
	assert.True(t, marked)
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	u := knownUser(t, "password123")
	users := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
			if email == u.Email {
				return u, nil
			}
			return nil, user.ErrNotFound
		},
	}
	staging := &mocks.StagingRepositoryMock{
		StageOTPFn: func(ctx context.Context, email, otp string, ttl time.Duration) error {
			t.Fatal("failed credential must not stage an OTP")
			return nil
		},
	}

	svc := newAuthService(users, staging, nil, nil, nil)

	errUnknown := svc.Login(context.Background(), &auth.LoginRequest{Email: "ghost@example.com", Password: "password123"}, "c")
	errWrongPw := svc.Login(context.Background(), &auth.LoginRequest{Email: u.Email, Password: "nope-nope"}, "c")

	assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredential)
	assert.ErrorIs(t, errWrongPw, auth.ErrInvalidCredential)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestLoginThrottled(t *testing.T) {
	limiter := &mocks.RateLimiterMock{
		CheckFn: func(ctx context.Context, action, clientID, targetID string) (bool, error) {
			return false, nil
		},
	}
	users := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
			t.Fatal("throttled login must not hit the user store")
			return nil, nil
		},
	}

	svc := newAuthService(users, nil, nil, limiter, nil)
	err := svc.Login(context.Background(), &auth.LoginRequest{Email: "ada@example.com", Password: "password123"}, "c")
	assert.ErrorIs(t, err, auth.ErrThrottled)
}

func TestVerifyOTPIssuesSession(t *testing.T) {
	u := knownUser(t, "password123")
	deleted := false
	var storedRefresh string

	staging := &mocks.StagingRepositoryMock{
		GetOTPFn: func(ctx context.Context, email string) (string, error) {
			return "123456", nil
		},
		DeleteOTPFn: func(ctx context.Context, email string) error {
			deleted = true
			return nil
		},
	}
	users := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
			return u, nil
		},
	}
	tokenRepo := &mocks.TokenRepositoryMock{
		StoreRefreshTokenFn: func(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
			assert.Equal(t, u.ID, userID)
			assert.Equal(t, testJWTConfig.RefreshTokenTTL, ttl)
			storedRefresh = token
			return nil
		},
	}

	svc := newAuthService(users, staging, tokenRepo, nil, nil)
	got, pair, err := svc.VerifyOTP(context.Background(), &auth.VerifyOTPRequest{Email: u.Email, OTP: "123456"})
	require.NoError(t, err)

	assert.True(t, deleted, "a matched OTP is single-use")
	assert.Equal(t, u, got)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, storedRefresh, pair.RefreshToken)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestVerifyOTPMismatchKeepsStagedOTP(t *testing.T) {
	deleted := false
	staging := &mocks.StagingRepositoryMock{
		GetOTPFn: func(ctx context.Context, email string) (string, error) {
			return "123456", nil
		},
		DeleteOTPFn: func(ctx context.Context, email string) error {
			deleted = true
			return nil
		},
	}

	svc := newAuthService(nil, staging, nil, nil, nil)
	_, _, err := svc.VerifyOTP(context.Background(), &auth.VerifyOTPRequest{Email: "ada@example.com", OTP: "654321"})

	assert.ErrorIs(t, err, auth.ErrInvalidOTP)
	assert.False(t, deleted, "a wrong guess must leave the staged OTP for retry")
}

func TestVerifyOTPExpired(t *testing.T) {
	svc := newAuthService(nil, &mocks.StagingRepositoryMock{}, nil, nil, nil)
	_, _, err := svc.VerifyOTP(context.Background(), &auth.VerifyOTPRequest{Email: "ada@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestRefreshRotatesSession(t *testing.T) {
	u := knownUser(t, "password123")
	var storedRefresh string
	tokenRepo := &mocks.TokenRepositoryMock{
		StoreRefreshTokenFn: func(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
			storedRefresh = token
			return nil
		},
		GetRefreshTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return storedRefresh, nil
		},
	}
	users := &mocks.UserRepositoryMock{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			require.Equal(t, u.ID, id)
			return u, nil
		},
	}

	svc := newAuthService(users, nil, tokenRepo, nil, nil)
	first, err := svc.GenerateTokens(context.Background(), u)
	require.NoError(t, err)

	got, pair, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	require.NotNil(t, pair)
	assert.Equal(t, storedRefresh, pair.RefreshToken, "rotation replaces the stored token")
}

func TestRefreshSupersededTokenRejected(t *testing.T) {
	u := knownUser(t, "password123")
	var storedRefresh string
	tokenRepo := &mocks.TokenRepositoryMock{
		StoreRefreshTokenFn: func(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
			storedRefresh = token
			return nil
		},
		GetRefreshTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return storedRefresh, nil
		},
	}

	svc := newAuthService(nil, nil, tokenRepo, nil, nil)
	first, err := svc.GenerateTokens(context.Background(), u)
	require.NoError(t, err)

	// A second issuance overwrites the single stored token.
	second, err := svc.GenerateTokens(context.Background(), u)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefreshGarbageTokenRejected(t *testing.T) {
	svc := newAuthService(nil, nil, nil, nil, nil)
	_, _, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefreshAccessTokenRejected(t *testing.T) {
	u := knownUser(t, "password123")
	svc := newAuthService(nil, nil, nil, nil, nil)
	pair, err := svc.GenerateTokens(context.Background(), u)
	require.NoError(t, err)

	// Signed with the wrong secret for this code path.
	_, _, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestValidateAccessTokenRejectsTampering(t *testing.T) {
	u := knownUser(t, "password123")
	svc := newAuthService(nil, nil, nil, nil, nil)
	pair, err := svc.GenerateTokens(context.Background(), u)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken + "x")
	assert.Error(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err, "refresh tokens are not valid access tokens")
}

func TestVerifyOTPStoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("redis gone")
	staging := &mocks.StagingRepositoryMock{
		GetOTPFn: func(ctx context.Context, email string) (string, error) {
			return "", storeErr
		},
	}

	svc := newAuthService(nil, staging, nil, nil, nil)
	_, _, err := svc.VerifyOTP(context.Background(), &auth.VerifyOTPRequest{Email: "ada@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, storeErr)
}
