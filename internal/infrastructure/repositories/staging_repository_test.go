package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/clavisauth/clavis/internal/infrastructure/redis"
)

func newTestStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewStore(client, ""), mr
}

func pendingFixture() *user.PendingRegistration {
	return &user.PendingRegistration{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$hash",
	}
}

func TestStagingPendingRegistrationRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewStagingRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.StagePendingRegistration(ctx, "tok-1", pendingFixture(), 5*time.Minute))
	assert.True(t, mr.Exists("verify:tok-1"))

	got, err := repo.ConsumePendingRegistration(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, pendingFixture(), got)
}

func TestStagingConsumeIsSingleUse(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewStagingRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.StagePendingRegistration(ctx, "tok-1", pendingFixture(), 5*time.Minute))

	_, err := repo.ConsumePendingRegistration(ctx, "tok-1")
	require.NoError(t, err)

	_, err = repo.ConsumePendingRegistration(ctx, "tok-1")
	assert.ErrorIs(t, err, auth.ErrTokenExpired, "replaying a consumed token fails like an expired one")
}

func TestStagingPendingRegistrationExpires(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewStagingRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.StagePendingRegistration(ctx, "tok-1", pendingFixture(), 5*time.Minute))

	mr.FastForward(5*time.Minute + time.Second)

	_, err := repo.ConsumePendingRegistration(ctx, "tok-1")
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestStagingOTPOverwrite(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewStagingRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.StageOTP(ctx, "ada@example.com", "111111", 5*time.Minute))
	require.NoError(t, repo.StageOTP(ctx, "ada@example.com", "222222", 5*time.Minute))

	got, err := repo.GetOTP(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got, "a later login supersedes the earlier OTP")
}

func TestStagingOTPExpiresAndDeletes(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewStagingRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.StageOTP(ctx, "ada@example.com", "123456", 5*time.Minute))
	assert.True(t, mr.Exists("otp:ada@example.com"))

	mr.FastForward(5*time.Minute + time.Second)
	_, err := repo.GetOTP(ctx, "ada@example.com")
	assert.ErrorIs(t, err, auth.ErrTokenExpired)

	require.NoError(t, repo.StageOTP(ctx, "ada@example.com", "654321", 5*time.Minute))
	require.NoError(t, repo.DeleteOTP(ctx, "ada@example.com"))
	_, err = repo.GetOTP(ctx, "ada@example.com")
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestStagingOTPKeysAreDisjointPerEmail(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewStagingRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.StageOTP(ctx, "ada@example.com", "111111", 5*time.Minute))
	require.NoError(t, repo.StageOTP(ctx, "bob@example.com", "222222", 5*time.Minute))

	got, err := repo.GetOTP(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "111111", got)
}
