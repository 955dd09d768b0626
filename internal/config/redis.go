package config

import (
    "context"
    "crypto/tls"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
)

// RedisConfig describes how to reach the Redis server used for rate
// limiting and catalog response caching.
//
// Supported variables are:
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand (host/port win when both are set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

// LoadRedisConfig reads RedisConfig from the environment.
func LoadRedisConfig() RedisConfig {
    addr := os.Getenv("REDIS_ADDR")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    tlsEnv := os.Getenv("REDIS_TLS")
    return RedisConfig{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
        TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
    }
}

// NewRedisClient connects to Redis and pings it with a short timeout.
// It returns nil when the server is unreachable; callers degrade by
// disabling caching and rate limiting.
func NewRedisClient(cfg RedisConfig, logger logrus.FieldLogger) *redis.Client {
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        logger.WithError(err).WithField("addr", cfg.Addr).Warn("redis unavailable; rate limiting and caching disabled")
        _ = client.Close()
        return nil
    }
    return client
}
