package config

import (
    "strings"
    "time"
)

// CacheConfig configures the Redis response cache.  The cache is only
// mounted on the category tree; seat availability and movie
// exploration are always read from the database.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool // upper-case HTTP methods eligible for caching
    TTL          time.Duration
    KeyStrategy  string // route, route_query, method_route or method_route_query
    Prefix       string
    MaxBodyBytes int // larger responses are served but not stored
}

var cacheKeyStrategies = []string{"route", "route_query", "method_route", "method_route_query"}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    c := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  strings.ToLower(envStr("CACHE_KEY_STRATEGY", "route_query")),
        Prefix:       envStr("CACHE_PREFIX", "cache:catalog"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if !contains(cacheKeyStrategies, c.KeyStrategy) {
        c.KeyStrategy = "route_query"
    }
    if len(c.Methods) == 0 {
        c.Methods = map[string]bool{"GET": true}
    }
    return c
}

// parseMethods turns "get, head" into {"GET": true, "HEAD": true}.
func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
            m[p] = true
        }
    }
    return m
}
