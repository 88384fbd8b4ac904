package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often expired counters are evicted.
const sweepEvery = time.Minute

type memoryEntry struct {
	slot   int64
	count  int
	expiry time.Time
}

// MemoryLimiter implements a fixed-window in-memory rate limiter.
type MemoryLimiter struct {
	mu        sync.Mutex
	counters  map[string]*memoryEntry
	lastSweep time.Time
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*memoryEntry),
	}
}

// Allow counts a request against key in the window containing now.
func (l *MemoryLimiter) Allow(_ context.Context, key string, rule Rule, now time.Time) (Result, error) {
	if !rule.Enabled() || key == "" {
		return Result{Allowed: true}, nil
	}
	slot, reset := rule.slot(now)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	entry := l.counters[key]
	if entry == nil || entry.slot != slot {
		entry = &memoryEntry{slot: slot}
		l.counters[key] = entry
	}
	entry.expiry = reset
	if entry.count >= rule.Limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	return Result{Allowed: true, Remaining: rule.Limit - entry.count, Reset: reset}, nil
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// sweep drops counters whose window has ended. Callers hold l.mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now
	for key, entry := range l.counters {
		if !entry.expiry.After(now) {
			delete(l.counters, key)
		}
	}
}
