package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitUserPrefix is the Redis key prefix for per-user limits.
	rateLimitUserPrefix = "ratelimit:user:"
	// rateLimitIPPrefix is the Redis key prefix for per-IP limits.
	rateLimitIPPrefix = "ratelimit:ip:"
	// rateLimitTTL is the idle expiry for bucket keys.
	rateLimitTTL = 120 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes a token bucket atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	tokens = math.min(burst, tokens + ((now - last_update) * rate))

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckUserRateLimit applies a per-minute bucket to an authenticated user.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, perMinute, burst int) (*RateLimitResult, error) {
	return c.checkRateLimit(ctx, rateLimitUserPrefix+userID, perMinute, burst)
}

// CheckIPRateLimit applies a per-minute bucket to a client IP within a
// named scope, so auth and API traffic draw from separate buckets.
// The IP is hashed to avoid storing raw addresses.
func (c *Cache) CheckIPRateLimit(ctx context.Context, scope, ip string, perMinute, burst int) (*RateLimitResult, error) {
	return c.checkRateLimit(ctx, rateLimitIPPrefix+scope+":"+hashIP(ip), perMinute, burst)
}

// checkRateLimit runs the bucket script. Redis errors fail open.
func (c *Cache) checkRateLimit(ctx context.Context, key string, perMinute, burst int) (*RateLimitResult, error) {
	if perMinute <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: time.Now().Add(time.Minute)}, nil
	}

	rate := float64(perMinute) / 60.0
	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		rate, burst, time.Now().Unix(), int(rateLimitTTL.Seconds()),
	).Int64Slice()

	if err != nil || len(result) != 3 {
		return &RateLimitResult{
			Allowed:   true,
			Remaining: int64(burst),
			ResetAt:   time.Now().Add(time.Minute),
		}, nil
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    time.Now().Add(time.Duration(float64(time.Second) / rate)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
