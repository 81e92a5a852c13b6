package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is an in-memory per-key rate limiter. Each key gets its own
// bucket of `limit` tokens refilled continuously over `window`.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	capacity  float64
	refillPer float64 // tokens per second

	lastPrune time.Time
	now       func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

const pruneInterval = 10 * time.Minute

func NewTokenBucket(limit int, window time.Duration) *TokenBucket {
	return &TokenBucket{
		buckets:   make(map[string]*bucket),
		capacity:  float64(limit),
		refillPer: float64(limit) / window.Seconds(),
		now:       time.Now,
	}
}

// Allow takes one token from the key's bucket. It returns false when the
// bucket is empty, meaning the caller should reject the request.
func (t *TokenBucket) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: t.capacity}
		t.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * t.refillPer
		if b.tokens > t.capacity {
			b.tokens = t.capacity
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// pruneLocked drops buckets idle long enough to have fully refilled.
func (t *TokenBucket) pruneLocked(now time.Time) {
	if now.Sub(t.lastPrune) < pruneInterval {
		return
	}
	t.lastPrune = now

	idle := time.Duration(t.capacity/t.refillPer) * time.Second
	if idle < pruneInterval {
		idle = pruneInterval
	}
	for key, b := range t.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(t.buckets, key)
		}
	}
}
