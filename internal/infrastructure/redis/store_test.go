package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, prefix), mr
}

func TestStoreSetGetDelete(t *testing.T) {
	store, _ := newTestStore(t, "")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, store.Delete(ctx, "k"))

	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreTTLExpiry(t *testing.T) {
	store, mr := newTestStore(t, "")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 5*time.Minute))

	mr.FastForward(5*time.Minute - time.Second)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "still present just inside the TTL")

	mr.FastForward(2 * time.Second)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "gone once the TTL elapses")
}

func TestStoreSetOverwritesValueAndTTL(t *testing.T) {
	store, mr := newTestStore(t, "")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("first"), time.Minute))
	require.NoError(t, store.Set(ctx, "k", []byte("second"), 5*time.Minute))

	mr.FastForward(2 * time.Minute)
	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "overwrite resets the TTL")
	assert.Equal(t, []byte("second"), val)
}

func TestStorePrefixNamespacing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	a := NewStore(client, "a")
	b := NewStore(client, "b")
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "k", []byte("va"), time.Minute))

	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "prefixes keep stores disjoint")

	assert.True(t, mr.Exists("a:k"))
}
