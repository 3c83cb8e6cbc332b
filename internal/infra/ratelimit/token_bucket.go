package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

/*
TokenBucket keeps one bucket per key in memory, refilled lazily on each Allow.
Call Stop to end the background eviction of idle buckets.
*/
type TokenBucket struct {
	cfg     LimiterConfig
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	cancel  chan struct{}
	once    sync.Once
}

func NewTokenBucket(cfg LimiterConfig) *TokenBucket {
	t := &TokenBucket{
		cfg:     cfg.normalize(),
		buckets: make(map[string]*bucket),
		now:     time.Now,
		cancel:  make(chan struct{}),
	}
	go t.background()
	return t
}

func (t *TokenBucket) Allow(_ context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(t.cfg.Capacity), lastRefill: now}
		t.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(float64(t.cfg.Capacity), b.tokens+elapsed*t.cfg.RatePS)
		b.lastRefill = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (t *TokenBucket) evictIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-t.cfg.IdleTTL)
	for k, b := range t.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(t.buckets, k)
		}
	}
}

func (t *TokenBucket) background() {
	ticker := time.NewTicker(t.cfg.IdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			t.evictIdle()
		}
	}
}

func (t *TokenBucket) Stop() {
	t.once.Do(func() {
		close(t.cancel)
	})
}

var _ Limiter = (*TokenBucket)(nil)
