// Package clients provides the HTTP plumbing shared by API backed
// connectors: a token bucket rate limiter and a retrying transport.
package clients

import (
	"context"
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm. Tokens are added at a
// constant rate up to burst and each request consumes one.
type TokenBucket struct {
	rate     float64
	burst    int
	tokens   float64
	lastTime time.Time
	now      func() time.Time

	mu sync.Mutex
}

// NewTokenBucket creates a limiter allowing rate requests per second with
// bursts of up to burst requests. A burst below one is raised to one.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		rate:     rate,
		burst:    burst,
		tokens:   float64(burst),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// PerMinute creates a limiter for an API quota expressed per minute.
func PerMinute(requests, burst int) *TokenBucket {
	return NewTokenBucket(float64(requests)/60, burst)
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill()
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastTime).Seconds()
	tb.lastTime = now
	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.burst) {
		tb.tokens = float64(tb.burst)
	}
}
