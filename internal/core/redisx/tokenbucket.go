package redisx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills in whole intervals and takes one token.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
  local elapsed = math.max(0, now_ms - last_refill)
  local intervals = math.floor(elapsed / interval_ms)
  if intervals > 0 then
    tokens = math.min(capacity, tokens + (intervals * refill_tokens))
    last_refill = last_refill + (intervals * interval_ms)
  end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = interval_ms - (now_ms - last_refill)
  if retry_after_ms < 0 then retry_after_ms = 0 end
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// TokenBucket is a limiter shared by every process pointed at the same Redis.
type TokenBucket struct {
	c        *Client
	Capacity int
	Refill   int
	Interval time.Duration
	TTL      time.Duration

	now func() time.Time
}

// NewTokenBucket refills roughly rps tokens per second up to burst.
func NewTokenBucket(c *Client, rps float64, burst int) *TokenBucket {
	if burst <= 0 {
		burst = 1
	}
	interval := time.Second
	refill := int(rps)
	if rps > 0 && rps < 1 {
		interval = time.Duration(float64(time.Second) / rps)
		refill = 1
	}
	return &TokenBucket{c: c, Capacity: burst, Refill: refill, Interval: interval, TTL: 10 * time.Minute}
}

func (b *TokenBucket) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	if b.now != nil {
		now = b.now()
	}
	ttl := int64(b.TTL / time.Second)
	if ttl < 1 {
		ttl = 1
	}
	vals, err := tokenBucketScript.Run(ctx, b.c.RDB, []string{b.c.Key("rl", key)},
		now.UnixMilli(), b.Capacity, b.Refill, b.Interval.Milliseconds(), ttl,
	).Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("token bucket: unexpected reply %#v", vals)
	}
	return Decision{
		Allowed:    asInt64(vals[0]) == 1,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
