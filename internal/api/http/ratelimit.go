package http

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/observability"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// fixedWindowScript increments the counter and arms its expiry on the first hit.
// Returns {count, ttl_ms}.
var fixedWindowScript = redis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts hits for a key within a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// RedisRateLimiter is a fixed-window limiter shared by all instances through Redis.
type RedisRateLimiter struct {
	client redis.UniversalClient
}

// NewRedisRateLimiter builds a limiter. A nil client allows everything.
func NewRedisRateLimiter(client redis.UniversalClient) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// Allow records a hit for key and reports whether it stays within limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if l == nil || l.client == nil || limit <= 0 {
		return Decision{Allowed: true, Remaining: limit}, nil
	}
	if window <= 0 {
		window = time.Minute
	}

	res, err := fixedWindowScript.Run(ctx, l.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit eval: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit eval: unexpected result %v", res)
	}

	count := int(res[0])
	ttl := time.Duration(res[1]) * time.Millisecond
	d := Decision{Allowed: count <= limit, Remaining: max(0, limit-count)}
	if !d.Allowed {
		d.RetryAfter = ttl
		if ttl <= 0 {
			d.RetryAfter = window
		}
	}
	return d, nil
}

// RateLimitConfig describes one limited route group.
type RateLimitConfig struct {
	KeyPrefix string
	Limit     int
	Window    time.Duration
}

// RateLimitByIP rejects clients that exceed cfg.Limit requests per window with 429.
// Limiter failures let the request through.
func RateLimitByIP(limiter RateLimiter, cfg RateLimitConfig, logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl"
	}
	return func(c *fiber.Ctx) error {
		if limiter == nil || cfg.Limit <= 0 {
			return c.Next()
		}

		bucket := time.Now().UnixNano() / int64(cfg.Window)
		key := fmt.Sprintf("%s:%s:%d", cfg.KeyPrefix, c.IP(), bucket)

		d, err := limiter.Allow(c.UserContext(), key, cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			metrics.RecordRateLimited(c.Route().Path)
			return apperrors.NewRateLimited(retry)
		}
		return c.Next()
	}
}
