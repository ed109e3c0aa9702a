package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Window and attempt limits for the two authentication entry points. The
// instances must stay separate so sign-in attempts never count against
// registration and vice versa.
const (
	Window              = 15 * time.Minute
	SignInMaxAttempts   = 10
	RegisterMaxAttempts = 5
)

// Result is the definite outcome of one attempt check
type Result struct {
	Allowed    bool `json:"allowed"`
	RetryAfter int  `json:"retry_after,omitempty"` // Seconds until the window reopens
}

// Store tracks attempts per key with atomic read-modify-write semantics, so
// the same limiter logic works over an in-process map or a shared cache.
type Store interface {
	// Take records one attempt for key and returns the attempt count within
	// the current window together with the moment the window resets. A fresh
	// or expired key starts a new window at count 1.
	Take(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Limiter enforces a fixed attempt window per key. A key's window opens on
// its first attempt and expires a full window later, regardless of further
// attempts inside it.
type Limiter struct {
	store       Store
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// New builds a limiter allowing maxAttempts per window for each key
func New(store Store, maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Check records one attempt for key and never fails: a store error is logged
// and the attempt allowed rather than locking every client out.
func (l *Limiter) Check(ctx context.Context, key string) Result {
	count, resetAt, err := l.store.Take(ctx, key, l.window)
	if err != nil {
		logrus.WithError(err).Warn("rate limit store unavailable, allowing attempt")
		return Result{Allowed: true}
	}
	if count <= l.maxAttempts {
		return Result{Allowed: true}
	}
	return Result{Allowed: false, RetryAfter: retryAfterSeconds(resetAt, l.now())}
}

// retryAfterSeconds rounds the remaining window up to whole seconds, so the
// reported value strictly counts down as the window ages and reaches zero
// when it reopens.
func retryAfterSeconds(resetAt, now time.Time) int {
	remaining := resetAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}
