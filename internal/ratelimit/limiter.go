// Package ratelimit implements a fixed-window limiter keyed by action and
// caller identity, with pluggable counter stores.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"
)

// Default submission budget.
const (
	DefaultLimit  = 5
	DefaultWindow = time.Hour
)

// ActionSubmit is the key prefix for post submissions.
const ActionSubmit = "submit"

// Decision is the outcome of a single limiter check. RetryAfter is in whole
// seconds and is only set when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter int
}

// Store performs one atomic read-modify-write of a window counter.
// Implementations must serialize concurrent hits for the same key.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error)
}

// Limiter applies a fixed limit per window to every key.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter returns a Limiter allowing limit hits per window. Non-positive
// values fall back to the defaults.
func NewLimiter(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{store: store, limit: limit, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ErrNoStore is returned when a Limiter is used without a backing store.
var ErrNoStore = errors.New("rate limit store is nil")

// Check counts one action by identity and reports whether it is allowed.
func (l *Limiter) Check(ctx context.Context, action, identity string) (Decision, error) {
	if l.store == nil {
		return Decision{}, ErrNoStore
	}
	return l.store.Hit(ctx, Key(action, identity), l.limit, l.window, l.now())
}

// Limit returns the configured per-window budget.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Key builds the counter key for an action and identity.
func Key(action, identity string) string {
	return action + ":" + identity
}

// retryAfterSeconds rounds up and never reports less than one second.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
