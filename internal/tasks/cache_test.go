package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func countingLoader(calls *int, list []Task) func(context.Context) ([]Task, error) {
	return func(context.Context) ([]Task, error) {
		*calls++
		return list, nil
	}
}

func TestCacheFetchListPopulatesOnMiss(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	want := []Task{{ID: 1, UserID: "user123", Title: "cached"}}

	got, err := cache.FetchList(ctx, "user123", countingLoader(&calls, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)

	// Second fetch is served from Redis without touching the loader.
	got, err = cache.FetchList(ctx, "user123", countingLoader(&calls, nil))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	first := []Task{{ID: 1, UserID: "user123", Title: "before"}}
	_, err := cache.FetchList(ctx, "user123", countingLoader(&calls, first))
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx, "user123"))

	second := []Task{{ID: 1, UserID: "user123", Title: "after"}}
	got, err := cache.FetchList(ctx, "user123", countingLoader(&calls, second))
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Equal(t, 2, calls)
}

func TestCachePerUserIsolation(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	aCalls, bCalls := 0, 0
	aList := []Task{{ID: 1, UserID: "user123", Title: "mine"}}
	bList := []Task{{ID: 2, UserID: "user456", Title: "theirs"}}

	_, err := cache.FetchList(ctx, "user123", countingLoader(&aCalls, aList))
	require.NoError(t, err)
	_, err = cache.FetchList(ctx, "user456", countingLoader(&bCalls, bList))
	require.NoError(t, err)

	// Bumping one user leaves the other's entry warm.
	require.NoError(t, cache.Bump(ctx, "user123"))

	got, err := cache.FetchList(ctx, "user456", countingLoader(&bCalls, nil))
	require.NoError(t, err)
	assert.Equal(t, bList, got)
	assert.Equal(t, 1, bCalls)

	_, err = cache.FetchList(ctx, "user123", countingLoader(&aCalls, aList))
	require.NoError(t, err)
	assert.Equal(t, 2, aCalls)
}

func TestCacheDegradesWhenRedisDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	srv.Close()

	calls := 0
	want := []Task{{ID: 1, UserID: "user123", Title: "direct"}}
	got, err := cache.FetchList(context.Background(), "user123", countingLoader(&calls, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)
}

func TestNilCacheFallsThrough(t *testing.T) {
	var cache *Cache

	calls := 0
	want := []Task{{ID: 1, UserID: "user123", Title: "direct"}}
	got, err := cache.FetchList(context.Background(), "user123", countingLoader(&calls, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)

	assert.NoError(t, cache.Bump(context.Background(), "user123"))
}
