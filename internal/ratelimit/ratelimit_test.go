package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manual time source whose Sleep advances the clock instead
// of blocking.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(maxPerMin int, clock *fakeClock) *Limiter {
	return New("alphavantage", maxPerMin, WithClock(clock.Now), WithSleep(clock.Sleep))
}

func TestWaitWithinBudget(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(5, clock)

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	assert.Empty(t, clock.slept, "requests inside the budget should not wait")
}

func TestWaitBlocksSixthRequest(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(5, clock)

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	// The sixth request must wait until a full window has passed since the
	// first one.
	require.NoError(t, limiter.Wait(context.Background()))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, time.Minute, clock.slept[0])
}

func TestWaitBlocksUntilOldestExpires(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(5, clock)

	require.NoError(t, limiter.Wait(context.Background()))
	clock.Advance(10 * time.Second)
	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	// Window is full. The next slot opens when the first request ages out,
	// 50 seconds from now.
	require.NoError(t, limiter.Wait(context.Background()))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, 50*time.Second, clock.slept[0])
}

func TestWaitAfterWindowExpires(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(5, clock)

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	clock.Advance(61 * time.Second)

	require.NoError(t, limiter.Wait(context.Background()))
	assert.Empty(t, clock.slept, "expired window should admit immediately")
}

func TestWaitUnlimited(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(0, clock)

	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Empty(t, clock.slept)
}

func TestWaitNilLimiter(t *testing.T) {
	var limiter *Limiter
	assert.NoError(t, limiter.Wait(context.Background()))
}

func TestWaitCanceledContext(t *testing.T) {
	limiter := New("alphavantage", 1)

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
