// Package ratelimit implements per-client token bucket rate limiting for
// the dev server's HTTP handlers.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter manages one token bucket per key (typically a client IP).
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	stop    chan struct{}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing requests tokens per window, with
// burst capacity. It starts a goroutine that drops idle buckets; call Close
// to stop it.
func NewLimiter(requests int, window time.Duration, burst int) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   burst,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request with the given key may proceed, and the
// suggested wait before retrying when it may not.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()

	if b.limiter.Allow() {
		return true, 0
	}
	retryAfter := max(time.Duration(float64(time.Second)/float64(l.rate)), time.Second)
	return false, retryAfter
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup removes buckets that are idle and refilled.
func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	stale := time.Now().Add(-10 * time.Minute)
	for key, b := range l.buckets {
		if b.lastSeen.Before(stale) && b.limiter.Tokens() >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	close(l.stop)
}
