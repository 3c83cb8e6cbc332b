package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more request for key may pass.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type LimiterConfig struct {
	Capacity int
	RatePS   float64 // tokens per second
	// IdleTTL evicts buckets untouched for this long
	IdleTTL time.Duration
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity: 100,
		RatePS:   1,
		IdleTTL:  time.Minute,
	}
}

func (c LimiterConfig) normalize() LimiterConfig {
	d := GetDefaultLimiterConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.RatePS <= 0 {
		c.RatePS = d.RatePS
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = d.IdleTTL
	}
	return c
}
