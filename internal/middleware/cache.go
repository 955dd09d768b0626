package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/config"
)

// captureWriter copies the response body while forwarding it to the
// client.  Once more than limit bytes were written the copy is dropped
// and the response is not cached.
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflow {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.overflow = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	case "method_route_query":
		parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
	default:
		parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// encodeEntry packs [status u32][header length u32][header JSON][body].
func encodeEntry(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, body...), nil
}

func decodeEntry(bs []byte) (int, http.Header, []byte, bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status := int(binary.BigEndian.Uint32(bs[0:4]))
	n := int(binary.BigEndian.Uint32(bs[4:8]))
	if n < 0 || 8+n > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if n > 0 {
		if err := json.Unmarshal(bs[8:8+n], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+n:], true
}

// Cache serves repeated requests for the wrapped routes from Redis.  Only
// 200 responses for the configured methods are stored.  It must only
// wrap catalog routes: seat availability is never cached.
func Cache(cfg config.CacheConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			key := cacheKey(cfg, c)
			res := c.Response()

			if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if status, hdr, body, ok := decodeEntry(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							res.Header().Add(k, v)
						}
					}
					res.Header().Set("X-Cache", "HIT")
					res.WriteHeader(status)
					_, err := res.Write(body)
					return err
				}
			} else if err != redis.Nil {
				log.WithError(err).Debug("cache lookup failed")
			}

			cw := &captureWriter{ResponseWriter: res.Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			res.Writer = cw
			res.Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.overflow {
				return nil
			}
			entry, err := encodeEntry(cw.status, res.Header().Clone(), cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.SetEx(context.WithoutCancel(c.Request().Context()), key, entry, ttl).Err(); err != nil {
				log.WithError(err).Debug("cache store failed")
			}
			return nil
		}
	}
}
