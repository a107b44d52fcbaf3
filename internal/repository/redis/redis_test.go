package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/profile-lookup/internal/repository/redis"
)

func newTestStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := redis.New(context.Background(), redis.Config{Addr: mr.Addr()}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, found, err := store.Get(context.Background(), "user:nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SetThenGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user:octocat", `{"login":"octocat"}`))

	value, found, err := store.Get(ctx, "user:octocat")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"login":"octocat"}`, value)

	raw, err := mr.Get("user:octocat")
	require.NoError(t, err)
	assert.Equal(t, `{"login":"octocat"}`, raw, "value is stored as a plain string key")
}

func TestStore_EntriesNeverExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user:octocat", `{"notFound":true}`))

	assert.Equal(t, time.Duration(0), mr.TTL("user:octocat"), "no TTL may be set")
	mr.FastForward(365 * 24 * time.Hour)

	_, found, err := store.Get(ctx, "user:octocat")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_Overwrite(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user:octocat", "first"))
	require.NoError(t, store.Set(ctx, "user:octocat", "second"))

	value, _, err := store.Get(ctx, "user:octocat")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestStore_Ping(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNew_ConnectionFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	store, err := redis.New(ctx, redis.Config{Addr: addr}, logger)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestStore_GetAfterServerGone(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := store.Get(ctx, "user:octocat")
	assert.Error(t, err)
}
