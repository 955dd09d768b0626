package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/config"
)

// tokenBucket refills a per-key bucket in whole intervals and takes one
// token per request.  It returns {allowed, tokens_left, retry_after_ms}.
var tokenBucket = redis.NewScript(`
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
  local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
  if intervals > 0 then
    tokens = math.min(capacity, tokens + intervals * refill_tokens)
    last_refill = last_refill + intervals * interval_ms
  end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

// bucketResult is the decoded reply of the token bucket script.
type bucketResult struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// RateLimit applies a Redis token bucket to the wrapped routes.  When it
// is disabled, Redis is nil or the script fails, requests pass through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			res, err := takeToken(c, cfg, rdb, key)
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}

			secs := int(math.Ceil(res.retry.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				log.WithFields(logrus.Fields{"key": key, "retry_after": res.retry}).Info("rate limited")
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func takeToken(c echo.Context, cfg config.RateLimitConfig, rdb *redis.Client, key string) (bucketResult, error) {
	vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Slice()
	if err != nil {
		return bucketResult{}, err
	}
	if len(vals) != 3 {
		return bucketResult{}, fmt.Errorf("unexpected token bucket reply %#v", vals)
	}
	return bucketResult{
		allowed:   asInt64(vals[0]) == 1,
		remaining: asInt64(vals[1]),
		retry:     time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
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

// rateKey builds the bucket key for the configured strategy.  Strategies
// combine the client ip, the user reference and the route; unknown
// strategies use all three.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	user := UserRef(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", user)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", user)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", user, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", user, "route", route)
	}
	return strings.Join(parts, ":")
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
