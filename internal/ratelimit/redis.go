package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter implements a fixed-window rate limiter shared through Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Allow counts a request against key in the window containing now.
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule Rule, now time.Time) (Result, error) {
	if !rule.Enabled() || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	slot, reset := rule.slot(now)
	// Counters outlive their window by one window.
	ttl := 2 * rule.window()
	count, errEval := redisIncrScript.Run(ctx, l.client, []string{l.buildKey(key, slot)}, ttl.Milliseconds()).Int64()
	if errEval != nil {
		return Result{}, fmt.Errorf("rate limit redis: %w", errEval)
	}
	if count > int64(rule.Limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Remaining: rule.Limit - int(count), Reset: reset}, nil
}

func (l *RedisLimiter) buildKey(key string, slot int64) string {
	suffix := "rl:" + key + ":" + strconv.FormatInt(slot, 10)
	if l.prefix == "" {
		return suffix
	}
	return l.prefix + ":" + suffix
}
