package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sessionKey string

type dataflowSet struct {
	IDs []string
}

func newDataflowCache() *InMemoryCacheManager[sessionKey, dataflowSet] {
	return NewInMemoryCacheManager[sessionKey, dataflowSet]("dataflows", DefaultExpiration, DefaultCleanupInterval)
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := newDataflowCache()
	want := dataflowSet{IDs: []string{"DF_LFS_2020", "DF_SILC_2021"}}
	cache.Set(context.Background(), "df:all", want, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "df:all")
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestInMemoryCacheManager_GetWithNoExistingValue(t *testing.T) {
	cache := newDataflowCache()

	got, ok := cache.Get(context.Background(), "df:all")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithExistingInvalidValueType(t *testing.T) {
	cache := newDataflowCache()
	cache.cache.Set("df:all", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "df:all")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[sessionKey, string]("short", time.Millisecond, time.Hour)
	cache.Set(context.Background(), "k", "v", 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := NewInMemoryCacheManager[sessionKey, string]("refresh", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	_, ok := cache.GetWithRefresh(ctx, "k", time.Minute)
	require.False(t, ok)

	cache.Set(ctx, "k", "v", time.Minute)
	got, ok := cache.GetWithRefresh(ctx, "k", NoExpiration)
	require.True(t, ok)
	require.Equal(t, "v", got)

	_, expiry, found := cache.cache.GetWithExpiration("k")
	require.True(t, found)
	require.True(t, expiry.IsZero(), "refresh with NoExpiration clears the deadline")
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	cache := newDataflowCache()
	ctx := context.Background()
	cache.Set(ctx, "a", dataflowSet{}, DefaultExpiration)
	cache.Set(ctx, "b", dataflowSet{}, DefaultExpiration)
	cache.Set(ctx, "c", dataflowSet{}, DefaultExpiration)

	require.NoError(t, cache.Delete(ctx))
	require.Equal(t, 3, cache.Len())

	require.NoError(t, cache.Delete(ctx, "a", "b"))
	require.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Flush(ctx))
	require.Zero(t, cache.Len())
}
