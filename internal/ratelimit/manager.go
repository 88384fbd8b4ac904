package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// Manager selects a limiter backend and enforces rate limits.
type Manager struct {
	nowFn         func() time.Time
	memoryLimiter Limiter
	redisLimiter  Limiter
	mu            sync.Mutex
	breakerUntil  time.Time
}

// NewManager constructs a Manager. A nil client keeps every limit in memory.
func NewManager(client *redis.Client, prefix string, nowFn func() time.Time) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	m := &Manager{
		nowFn:         nowFn,
		memoryLimiter: NewMemoryLimiter(),
	}
	if client != nil {
		m.redisLimiter = NewRedisLimiter(client, prefix)
	}
	return m
}

// Allow checks whether the request should be allowed using the best available backend.
func (m *Manager) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	if !rule.Enabled() || key == "" {
		return Result{Allowed: true}, nil
	}
	if m == nil {
		return Result{Allowed: true}, nil
	}
	now := m.nowFn()

	if m.redisLimiter != nil {
		if result, ok := m.allowRedis(ctx, key, rule, now); ok {
			return result, nil
		}
	}
	return m.memoryLimiter.Allow(ctx, key, rule, now)
}

func (m *Manager) allowRedis(ctx context.Context, key string, rule Rule, now time.Time) (Result, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.isBreakerActive(now) {
		return Result{}, false
	}
	result, errAllow := m.redisLimiter.Allow(ctx, key, rule, now)
	if errAllow != nil {
		m.tripBreaker(errAllow, now)
		return Result{}, false
	}
	return result, true
}

func (m *Manager) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	if err == nil || m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("rate limit: redis unavailable, falling back to memory")
}

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time {
	if m == nil || m.nowFn == nil {
		return time.Now()
	}
	return m.nowFn()
}
