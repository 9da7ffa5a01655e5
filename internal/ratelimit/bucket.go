// Package ratelimit implements the per-user write budget as a token bucket
// backed by Redis, so admission decisions hold across all server instances.
// Refill and decrement happen in a single Lua script; concurrent admissions
// for the same user can never double-grant a token.
package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// BucketKeyPrefix is the Redis key prefix for per-user token buckets
	BucketKeyPrefix = "ratelimit:user:"
	// BlockedUserKeyPrefix is the Redis key prefix for policy-blocked users
	BlockedUserKeyPrefix = "blocked_user:"
)

// admitScript refills the bucket for elapsed whole intervals, then tries to
// consume the requested cost. Returns {allowed, remaining, resetSeconds}.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local cost = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed >= interval then
  local cycles = math.floor(elapsed / interval)
  tokens = math.min(capacity, tokens + cycles * refill)
  ts = ts + cycles * interval
end

local allowed = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, interval * 2)

return {allowed, tokens, interval - (now - ts)}
`)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Blocked    bool // policy denial, distinct from an empty bucket
	Remaining  int  // tokens left after this check
	RetryAfter int  // seconds until the next refill
}

// Bucket is a keyed token-bucket limiter over a shared Redis store.
type Bucket struct {
	rdb          *redis.Client
	capacity     int
	refillTokens int
	interval     time.Duration
	fallback     *KeyedLimiter
	now          func() time.Time
}

// New creates a Bucket with the given budget: capacity tokens, refilled by
// refillTokens every interval.
func New(rdb *redis.Client, capacity, refillTokens int, interval time.Duration) *Bucket {
	// Fallback keeps roughly the same budget per process if Redis is down.
	rps := float64(refillTokens) / interval.Seconds()
	return &Bucket{
		rdb:          rdb,
		capacity:     capacity,
		refillTokens: refillTokens,
		interval:     interval,
		fallback:     NewKeyedLimiter(rps, capacity),
		now:          time.Now,
	}
}

// Admit checks whether userID may spend cost tokens. A denied decision is
// informational for the caller, never an error; the error return covers only
// unexpected internal failures.
func (b *Bucket) Admit(ctx context.Context, userID string, cost int) (Decision, error) {
	if cost <= 0 {
		cost = 1
	}

	// Policy block check first: blocked users never touch the bucket.
	blocked, err := b.rdb.Exists(ctx, BlockedUserKeyPrefix+userID).Result()
	if err == nil && blocked > 0 {
		return Decision{Blocked: true}, nil
	}

	res, err := admitScript.Run(ctx, b.rdb,
		[]string{BucketKeyPrefix + userID},
		b.now().Unix(), b.capacity, b.refillTokens, int(b.interval.Seconds()), cost,
	).Int64Slice()
	if err != nil {
		// Redis down: fall back to the per-process limiter so a cache outage
		// doesn't take journaling down with it.
		log.Printf("⚠️  Rate limiter falling back to in-process bucket: %v", err)
		if b.fallback.Allow(userID) {
			return Decision{Allowed: true, Remaining: b.capacity - cost}, nil
		}
		return Decision{Remaining: 0, RetryAfter: int(b.interval.Seconds())}, nil
	}
	if len(res) != 3 {
		return Decision{Allowed: true}, nil
	}

	d := Decision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: int(res[2]),
	}
	if !d.Allowed {
		log.Printf("Rate limit denied: user=%s remaining=%d reset_in=%ds", userID, d.Remaining, d.RetryAfter)
	}
	return d, nil
}

// BlockUser marks a user as policy-blocked for the given duration.
func (b *Bucket) BlockUser(ctx context.Context, userID string, d time.Duration) error {
	return b.rdb.Set(ctx, BlockedUserKeyPrefix+userID, "1", d).Err()
}

// UnblockUser clears a policy block.
func (b *Bucket) UnblockUser(ctx context.Context, userID string) error {
	return b.rdb.Del(ctx, BlockedUserKeyPrefix+userID).Err()
}
