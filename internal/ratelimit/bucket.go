package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// pricingScript refills the bucket from redis server time and takes one
// token. Tokens are returned as a string since redis truncates Lua numbers.
const pricingScript = `
local rate, burst, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3])
local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "at")
local tokens, at = tonumber(state[1]), tonumber(state[2])
if tokens == nil then
  tokens = burst
else
  tokens = math.min(burst, tokens + math.max(0, now - at) / 1000 * rate)
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "at", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, tostring(tokens), now}
`

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	client redis.Scripter
	script *redis.Script
	rate   float64
	burst  int
	ttl    time.Duration
}

func newBucket(client redis.Scripter, rate float64, burst int) *bucket {
	return &bucket{
		client: client,
		script: redis.NewScript(pricingScript),
		rate:   rate,
		burst:  burst,
		ttl:    bucketTTL(rate, burst),
	}
}

func (b *bucket) take(ctx context.Context, key string) (*RateLimitResult, error) {
	if key == "" {
		return nil, errors.New("rate limit key is empty")
	}
	reply, err := b.script.Run(ctx, b.client, []string{key}, b.rate, b.burst, b.ttl.Milliseconds()).Slice()
	if err != nil {
		return nil, err
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("unexpected rate limit reply of %d values", len(reply))
	}
	allowed, _ := reply[0].(int64)
	tokens, err := strconv.ParseFloat(fmt.Sprint(reply[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse remaining tokens: %w", err)
	}
	return newResult(allowed == 1, b.burst, tokens, b.rate), nil
}

// newResult reports how long a denied caller waits for the next whole token.
func newResult(allowed bool, burst int, tokens, rate float64) *RateLimitResult {
	res := &RateLimitResult{Allowed: allowed, Limit: burst, Remaining: int(tokens)}
	if !allowed && rate > 0 && tokens < 1 {
		res.RetryAfter = time.Duration((1 - tokens) / rate * float64(time.Second))
	}
	return res
}

// bucketTTL keeps idle buckets around for twice the time a full refill takes.
func bucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	return time.Duration(math.Max(1, math.Ceil(2*float64(burst)/rate))) * time.Second
}
