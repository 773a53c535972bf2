package rate

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultCapacity        = 5
	DefaultRefillPerSecond = 1.0 / 3600
	bucketMaxAge           = 24 * time.Hour
)

type TokenBucket struct {
	Tokens     float64
	Capacity   float64
	RefillRate float64
	LastRefill time.Time
}

// refill tops the bucket up for the time elapsed since LastRefill.
func (b *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.LastRefill).Seconds()
	if elapsed > 0 {
		b.Tokens = math.Min(b.Capacity, b.Tokens+elapsed*b.RefillRate)
	}
	b.LastRefill = now
}

func bucketExpired(b TokenBucket, now time.Time, maxAge time.Duration) bool {
	return now.Sub(b.LastRefill) > maxAge
}

type Option func(*clockOpts)

type clockOpts struct {
	now func() time.Time
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *clockOpts) {
		if now != nil {
			o.now = now
		}
	}
}

func buildClock(opts []Option) func() time.Time {
	o := clockOpts{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o.now
}

// TokenBucketLimiter admits up to capacity actions per key in a burst and
// regains refillRate tokens per second afterwards. Buckets are refilled lazily
// on access; there is no background ticker.
type TokenBucketLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
	capacity   float64
	refillRate float64
	now        func() time.Time
}

func NewTokenBucketLimiter(capacity int, refillPerSecond float64, opts ...Option) *TokenBucketLimiter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if refillPerSecond <= 0 {
		refillPerSecond = DefaultRefillPerSecond
	}
	return &TokenBucketLimiter{
		buckets:    map[string]*TokenBucket{},
		capacity:   float64(capacity),
		refillRate: refillPerSecond,
		now:        buildClock(opts),
	}
}

// bucket must be called with mu held.
func (l *TokenBucketLimiter) bucket(key string, now time.Time) *TokenBucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &TokenBucket{Tokens: l.capacity, Capacity: l.capacity, RefillRate: l.refillRate, LastRefill: now}
		l.buckets[key] = b
		return b
	}
	b.refill(now)
	return b
}

func (l *TokenBucketLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.bucket(key, l.now())
	if b.Tokens >= 1 {
		b.Tokens--
		return true
	}
	return false
}

func (l *TokenBucketLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(math.Floor(l.bucket(key, l.now()).Tokens))
}

// ResetAt reports when the bucket next holds a whole token. With a token
// already available the result is at or before now.
func (l *TokenBucketLimiter) ResetAt(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b := l.bucket(key, now)
	deficit := 1 - b.Tokens
	return now.Add(time.Duration(deficit / b.RefillRate * float64(time.Second)))
}

func (l *TokenBucketLimiter) ResetAtMillis(key string) int64 {
	return l.ResetAt(key).UnixMilli()
}

// RetryAfter is the wait until ResetAt, never negative.
func (l *TokenBucketLimiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	now := l.now()
	l.mu.Unlock()
	d := l.ResetAt(key).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Cleanup drops buckets untouched for a day and returns how many went.
func (l *TokenBucketLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for k, b := range l.buckets {
		if bucketExpired(*b, now, bucketMaxAge) {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}

func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
