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

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Stats.Set(ctx, AdminStatsKey, payload{Name: "a", Count: 2}, time.Minute))
	assert.True(t, mr.Exists("stats:admin"))

	var got payload
	require.NoError(t, cm.Stats.Get(ctx, AdminStatsKey, &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)

	require.NoError(t, cm.Stats.Delete(ctx, AdminStatsKey))
	assert.ErrorIs(t, cm.Stats.Get(ctx, AdminStatsKey, &got), ErrCacheNotFound)
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Stats.Set(ctx, UserStatsKey(3), payload{Count: 1}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got payload
	assert.ErrorIs(t, cm.Stats.Get(ctx, UserStatsKey(3), &got), ErrCacheNotFound)
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return payload{Name: "fresh", Count: calls}, nil
	}

	var first, second payload
	require.NoError(t, cm.Stats.CacheOrExecute(ctx, AdminStatsKey, &first, time.Minute, fetch))
	require.NoError(t, cm.Stats.CacheOrExecute(ctx, AdminStatsKey, &second, time.Minute, fetch))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	InvalidateStatsCache(ctx, cm)
	var third payload
	require.NoError(t, cm.Stats.CacheOrExecute(ctx, AdminStatsKey, &third, time.Minute, fetch))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third.Count)

	boom := errors.New("boom")
	err := cm.Stats.CacheOrExecute(ctx, UserStatsKey(1), &third, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestInvalidateStatsCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, key := range []string{AdminStatsKey, UserStatsKey(1), UserStatsKey(2)} {
		require.NoError(t, cm.Stats.Set(ctx, key, payload{}, time.Minute))
	}
	require.NoError(t, cm.Course.Set(ctx, CourseKey(9), payload{}, time.Minute))

	InvalidateStatsCache(ctx, cm, 1)
	assert.False(t, mr.Exists("stats:admin"))
	assert.False(t, mr.Exists("stats:user:1"))
	assert.True(t, mr.Exists("stats:user:2"))

	InvalidateStatsCache(ctx, cm)
	assert.False(t, mr.Exists("stats:user:2"))
	assert.True(t, mr.Exists("course:id:9"), "course entries are not stats")

	InvalidateCourseCache(ctx, cm, 9)
	assert.False(t, mr.Exists("course:id:9"))

	require.NoError(t, cm.Stats.Set(ctx, AdminStatsKey, payload{}, time.Minute))
	require.NoError(t, cm.Stats.Set(ctx, UserStatsKey(3), payload{}, time.Minute))
	InvalidateAdminStats(ctx, cm)
	assert.False(t, mr.Exists("stats:admin"))
	assert.True(t, mr.Exists("stats:user:3"))
}

func TestCacheManager_WithoutRedis(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.False(t, cm.Enabled())
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)
	assert.NoError(t, cm.Stats.Set(ctx, AdminStatsKey, payload{}, time.Minute))

	var got payload
	assert.ErrorIs(t, cm.Stats.Get(ctx, AdminStatsKey, &got), ErrCacheNotAvailable)

	calls := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, cm.Stats.CacheOrExecute(ctx, AdminStatsKey, &got, time.Minute, func() (interface{}, error) {
			calls++
			return payload{Count: calls}, nil
		}))
	}
	assert.Equal(t, 2, calls, "every call scans without redis")
	InvalidateStatsCache(ctx, cm, 1)
}

func TestCacheManager_HealthCheck(t *testing.T) {
	cm, mr := newTestManager(t)

	assert.True(t, cm.Enabled())
	assert.NoError(t, cm.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, cm.HealthCheck(context.Background()))
}
