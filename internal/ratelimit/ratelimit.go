// Package ratelimit provides a blocking sliding-window rate limiter used to
// keep provider clients inside their per-minute request budgets. Unlike a
// middleware limiter that rejects over-budget requests, this one makes the
// caller wait until the window has room, so long backfills simply slow down
// instead of failing.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/logging"
)

// Limiter allows at most max requests per rolling window. A nil Limiter or a
// non-positive max imposes no limit.
type Limiter struct {
	name   string
	max    int
	window time.Duration

	mu   sync.Mutex
	sent []time.Time // timestamps of requests still inside the window

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSleep replaces the wait function, for deterministic tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// New creates a limiter that admits at most maxPerMin requests per rolling
// minute. The name appears in wait logs so budget stalls are attributable to
// a provider.
func New(name string, maxPerMin int, opts ...Option) *Limiter {
	l := &Limiter{
		name:   name,
		max:    maxPerMin,
		window: constants.RateLimitWindow,
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until the next request fits inside the window, then records it.
// It returns early with the context error if ctx is canceled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.max <= 0 {
		return nil
	}

	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.sent) < l.max {
			l.sent = append(l.sent, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.sent[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		logging.Debug().
			Str("provider", l.name).
			Dur("wait", wait).
			Int("max_per_min", l.max).
			Msg("Rate limit reached, waiting")
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// prune drops timestamps that have aged out of the window. Callers must hold mu.
func (l *Limiter) prune(now time.Time) {
	i := 0
	for i < len(l.sent) && now.Sub(l.sent[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.sent = append(l.sent[:0], l.sent[i:]...)
	}
}

// sleepContext waits for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
