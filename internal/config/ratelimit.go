package config

import (
    "strings"
    "time"
)

// RateLimitConfig configures the Redis token bucket mounted on booking
// writes (POST and DELETE /v1/bookings).  A client gets Capacity
// requests up front and RefillTokens more every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after TTL
    KeyStrategy    string        // see rateKeyStrategies
    Prefix         string
    Debug          bool // expose the bucket key and log blocked requests
}

// rateKeyStrategies lists the accepted RATE_LIMIT_KEY_STRATEGY values.
var rateKeyStrategies = []string{"ip", "user", "route", "ip_user", "ip_route", "user_route", "ip_user_route"}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  RATE_LIMIT_BURST is
// accepted as an alias of RATE_LIMIT_CAPACITY.
func LoadRateLimitConfig() RateLimitConfig {
    capacity := envInt("RATE_LIMIT_CAPACITY", 20)
    if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
        capacity = burst
    }
    c := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       capacity,
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    strings.ToLower(envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route")),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl:booking"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    c.normalize()
    return c
}

// normalize clamps values the token bucket script cannot work with.
func (c *RateLimitConfig) normalize() {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    // a bucket must outlive a few refills or it resets to full
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    if !contains(rateKeyStrategies, c.KeyStrategy) {
        c.KeyStrategy = "ip_user_route"
    }
}

func contains(list []string, s string) bool {
    for _, v := range list {
        if v == s {
            return true
        }
    }
    return false
}
