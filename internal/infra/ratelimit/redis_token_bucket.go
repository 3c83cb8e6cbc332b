package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KEYS[1] bucket hash, ARGV capacity, rate per second, now in ns, ttl in seconds
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1])
local lastRefill = tonumber(bucket[2])
if tokens == nil then
	tokens = capacity
	lastRefill = now
end

local elapsed = (now - lastRefill) / 1000000000
if elapsed > 0 then
	tokens = math.min(capacity, tokens + elapsed * rate)
	lastRefill = now
end

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', lastRefill)
redis.call('EXPIRE', key, ttl)
return allowed
`)

// RedisTokenBucket shares buckets between instances. Redis failures let the request through.
type RedisTokenBucket struct {
	cfg    LimiterConfig
	client redis.Scripter
	prefix string
	logger *zerolog.Logger
}

func NewRedisTokenBucket(client redis.Scripter, cfg LimiterConfig, logger *zerolog.Logger) *RedisTokenBucket {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RedisTokenBucket{
		cfg:    cfg.normalize(),
		client: client,
		prefix: "ratelimit:",
		logger: logger,
	}
}

func (r *RedisTokenBucket) Allow(ctx context.Context, key string) bool {
	ttl := int64(math.Ceil(r.cfg.IdleTTL.Seconds()))
	res, err := tokenBucketScript.Run(ctx, r.client, []string{r.prefix + key},
		r.cfg.Capacity,
		r.cfg.RatePS,
		time.Now().UnixNano(),
		ttl,
	).Int64()
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
		return true
	}
	return res == 1
}

var _ Limiter = (*RedisTokenBucket)(nil)
