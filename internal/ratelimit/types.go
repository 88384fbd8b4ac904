package ratelimit

import (
	"context"
	"time"
)

// Rule allows Limit requests per Window. A non-positive Limit disables the rule.
type Rule struct {
	Limit  int
	Window time.Duration
}

// PerSecond returns a one-second rule.
func PerSecond(limit int) Rule {
	return Rule{Limit: limit, Window: time.Second}
}

// PerMinute returns a one-minute rule.
func PerMinute(limit int) Rule {
	return Rule{Limit: limit, Window: time.Minute}
}

// Enabled reports whether the rule limits anything.
func (r Rule) Enabled() bool {
	return r.Limit > 0
}

func (r Rule) window() time.Duration {
	if r.Window <= 0 {
		return time.Second
	}
	return r.Window
}

// slot returns the fixed window containing now and the time it ends.
func (r Rule) slot(now time.Time) (int64, time.Time) {
	size := r.window()
	index := now.UnixNano() / int64(size)
	return index, time.Unix(0, (index+1)*int64(size)).UTC()
}

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// RetryAfter returns the wait until the window resets, rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) int {
	if r.Reset.IsZero() || !r.Reset.After(now) {
		return 1
	}
	wait := r.Reset.Sub(now)
	seconds := int(wait / time.Second)
	if wait%time.Second != 0 {
		seconds++
	}
	return seconds
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule, now time.Time) (Result, error)
}

// Scope indicates which dimension the rate limit applies to.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeUser
	ScopeClientIP
)
