package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	rule := PerSecond(2)

	for i := 0; i < 2; i++ {
		result, err := limiter.Allow(ctx, "ai:u:1", rule, now)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
	result, err := limiter.Allow(ctx, "ai:u:1", rule, now)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	other, err := limiter.Allow(ctx, "ai:u:2", rule, now)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	next, err := limiter.Allow(ctx, "ai:u:1", rule, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, next.Allowed)
	assert.Equal(t, 1, next.Remaining)
}

func TestMemoryLimiter_MinuteWindowAndRetryAfter(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rule := PerMinute(1)

	first, err := limiter.Allow(ctx, "login:ip:10.0.0.1", rule, start)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, start.Add(time.Minute), first.Reset)

	now := start.Add(45*time.Second + 500*time.Millisecond)
	blocked, err := limiter.Allow(ctx, "login:ip:10.0.0.1", rule, now)
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)
	assert.Equal(t, 15, blocked.RetryAfter(now))

	later, err := limiter.Allow(ctx, "login:ip:10.0.0.1", rule, start.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, later.Allowed)
}

func TestMemoryLimiter_EvictsExpiredCounters(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	_, err := limiter.Allow(ctx, "login:ip:10.0.0.1", PerSecond(5), now)
	require.NoError(t, err)
	_, err = limiter.Allow(ctx, "login:ip:10.0.0.2", PerSecond(5), now)
	require.NoError(t, err)
	assert.Equal(t, 2, limiter.Len())

	_, err = limiter.Allow(ctx, "login:ip:10.0.0.3", PerSecond(5), now.Add(2*sweepEvery))
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.Len())
}

type failingLimiter struct{ calls int }

func (f *failingLimiter) Allow(context.Context, string, Rule, time.Time) (Result, error) {
	f.calls++
	return Result{}, errors.New("connection refused")
}

func TestManager_FallsBackToMemoryAndTripsBreaker(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	failing := &failingLimiter{}
	m := NewManager(nil, "", func() time.Time { return now })
	m.redisLimiter = failing

	result, err := m.Allow(context.Background(), "login:ip:10.0.0.1", PerSecond(1))
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = m.Allow(context.Background(), "login:ip:10.0.0.1", PerSecond(1))
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 1, failing.calls)

	now = now.Add(redisBreakerDuration + time.Second)
	_, err = m.Allow(context.Background(), "login:ip:10.0.0.1", PerSecond(1))
	require.NoError(t, err)
	assert.Equal(t, 2, failing.calls)
}

func TestManager_UnlimitedWhenNoLimitOrKey(t *testing.T) {
	m := NewManager(nil, "", nil)
	result, err := m.Allow(context.Background(), "", PerSecond(1))
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	result, err = m.Allow(context.Background(), "ai:u:1", PerSecond(0))
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRedisLimiter_KeyLayout(t *testing.T) {
	assert.Equal(t, "syariahos:rl:ai:u:1:42", NewRedisLimiter(nil, " syariahos ").buildKey("ai:u:1", 42))
	assert.Equal(t, "rl:ai:u:1:42", NewRedisLimiter(nil, "").buildKey("ai:u:1", 42))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "ai:u:7", Key(ScopeUser, "ai", 7, ""))
	assert.Equal(t, "login:ip:127.0.0.1", Key(ScopeClientIP, "login", 0, " 127.0.0.1 "))
	assert.Empty(t, Key(ScopeUser, "ai", 0, ""))
	assert.Empty(t, Key(ScopeNone, "ai", 7, "127.0.0.1"))
}
