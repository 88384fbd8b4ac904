// Package cache provides a read-through byte cache backed by Redis with an
// in-memory fallback.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// Store is a minimal key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// sweepEvery bounds how often expired entries are evicted on Set.
const sweepEvery = time.Minute

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	nowFn     func() time.Time
	lastSweep time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore(nowFn func() time.Time) *MemoryStore {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), nowFn: nowFn}
}

// Get returns a live entry.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.nowFn().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value until ttl elapses.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	s.sweep(now)
	s.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep drops expired entries. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	if !s.lastSweep.IsZero() && now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// RedisStore keeps entries in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: strings.TrimSpace(prefix)}
}

// Get reads a key; a missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, errGet := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errGet
	}
	return value, true, nil
}

// Set writes a key with expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.buildKey(key), value, ttl).Err()
}

func (s *RedisStore) buildKey(key string) string {
	if s.prefix == "" {
		return "cache:" + key
	}
	return s.prefix + ":cache:" + key
}

// Tiered prefers the remote store and falls back to memory while it is failing.
type Tiered struct {
	remote       Store
	memory       Store
	nowFn        func() time.Time
	mu           sync.Mutex
	breakerUntil time.Time
}

// NewTiered constructs a Tiered cache. A nil client keeps everything in memory.
func NewTiered(client *redis.Client, prefix string, nowFn func() time.Time) *Tiered {
	if nowFn == nil {
		nowFn = time.Now
	}
	t := &Tiered{memory: NewMemoryStore(nowFn), nowFn: nowFn}
	if client != nil {
		t.remote = NewRedisStore(client, prefix)
	}
	return t
}

// Get reads from the remote store when healthy, otherwise from memory.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if t.remoteHealthy() {
		value, ok, errGet := t.remote.Get(ctx, key)
		if errGet == nil {
			return value, ok, nil
		}
		t.tripBreaker(errGet)
	}
	return t.memory.Get(ctx, key)
}

// Set writes to the remote store when healthy, otherwise to memory.
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if t.remoteHealthy() {
		errSet := t.remote.Set(ctx, key, value, ttl)
		if errSet == nil {
			return nil
		}
		t.tripBreaker(errSet)
	}
	return t.memory.Set(ctx, key, value, ttl)
}

func (t *Tiered) remoteHealthy() bool {
	if t.remote == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.breakerUntil.IsZero() {
		return true
	}
	if t.nowFn().Before(t.breakerUntil) {
		return false
	}
	t.breakerUntil = time.Time{}
	return true
}

func (t *Tiered) tripBreaker(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.nowFn()
	if !t.breakerUntil.IsZero() && now.Before(t.breakerUntil) {
		return
	}
	t.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("cache: redis unavailable, falling back to memory")
}
