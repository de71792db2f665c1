package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsPayload struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		Close()
	})
	return mr
}

func TestGetSetJSON_RoundTrip(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "stats", statsPayload{Total: 7, Active: 2}, time.Minute))

	var got statsPayload
	found, err := GetJSON(ctx, "stats", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, statsPayload{Total: 7, Active: 2}, got)

	found, err = GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheAside_FetchesOnceUntilExpiry(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *statsPayload) func() error {
		return func() error {
			calls++
			*dest = statsPayload{Total: int64(calls)}
			return nil
		}
	}

	var first statsPayload
	require.NoError(t, CacheAside(ctx, "stats", &first, 5*time.Second, fetch(&first)))
	assert.Equal(t, 1, calls)

	var second statsPayload
	require.NoError(t, CacheAside(ctx, "stats", &second, 5*time.Second, fetch(&second)))
	assert.Equal(t, 1, calls, "second read should be served from cache")
	assert.Equal(t, first, second)

	mr.FastForward(10 * time.Second)
	var third statsPayload
	require.NoError(t, CacheAside(ctx, "stats", &third, 5*time.Second, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestCacheAside_PropagatesFetchError(t *testing.T) {
	withMiniredis(t)

	fetchErr := errors.New("db down")
	var dest statsPayload
	err := CacheAside(context.Background(), "stats", &dest, time.Minute, func() error {
		return fetchErr
	})
	assert.ErrorIs(t, err, fetchErr)
}

func TestHelpers_NilClientNoop(t *testing.T) {
	client = nil

	var dest statsPayload
	found, err := GetJSON(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(context.Background(), "k", dest, time.Minute))

	calls := 0
	require.NoError(t, CacheAside(context.Background(), "k", &dest, time.Minute, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}
