package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/config"
)

func newContext(method, target string, header map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestIdentity(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/", map[string]string{UserRefHeader: " alice "})
	var got string
	err := Identity()(func(c echo.Context) error {
		got = UserRef(c)
		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	c, _ = newContext(http.MethodGet, "/", nil)
	require.NoError(t, Identity()(func(c echo.Context) error {
		got = UserRef(c)
		return nil
	})(c))
	assert.Equal(t, "guest", got)
}

func TestRateKeyStrategies(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/v1/bookings", map[string]string{echo.HeaderXRealIP: "10.0.0.1"})
	c.SetPath("/v1/bookings")
	c.Set(userRefKey, "u1")

	cases := map[string]string{
		"ip":         "rl:ip:10.0.0.1",
		"user":       "rl:user:u1",
		"route":      "rl:route:POST /v1/bookings",
		"ip_user":    "rl:ip:10.0.0.1:user:u1",
		"ip_route":   "rl:ip:10.0.0.1:route:POST /v1/bookings",
		"user_route": "rl:user:u1:route:POST /v1/bookings",
		"":           "rl:ip:10.0.0.1:user:u1:route:POST /v1/bookings",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, rateKey(cfg, c), strategy)
	}
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	log, _ := test.NewNullLogger()
	called := 0
	h := func(c echo.Context) error {
		called++
		return c.String(http.StatusOK, "ok")
	}

	c, rec := newContext(http.MethodPost, "/v1/bookings", nil)
	require.NoError(t, RateLimit(config.RateLimitConfig{Enabled: true}, nil, log)(h)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))

	c, rec = newContext(http.MethodGet, "/v1/categories", nil)
	require.NoError(t, Cache(config.CacheConfig{Enabled: false}, nil, log)(h)(c))
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, called)
}

func TestCacheEntryRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodeEntry(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, got, body, ok := decodeEntry(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, got.Get(echo.HeaderContentType))
	assert.JSONEq(t, `{"a":1}`, string(body))

	_, _, _, ok = decodeEntry(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodeEntry(append([]byte{0, 0, 0, 200, 0, 0, 1, 0}, '{'))
	assert.False(t, ok)
}

func TestCaptureWriterOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.overflow)
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.overflow)
	assert.Zero(t, cw.buf.Len())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestCacheKeyIgnoresQueryForRouteStrategy(t *testing.T) {
	a, _ := newContext(http.MethodGet, "/v1/categories?x=1", nil)
	b, _ := newContext(http.MethodGet, "/v1/categories?x=2", nil)
	a.SetPath("/v1/categories")
	b.SetPath("/v1/categories")

	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	assert.Equal(t, cacheKey(cfg, a), cacheKey(cfg, b))
	cfg.KeyStrategy = "route_query"
	assert.NotEqual(t, cacheKey(cfg, a), cacheKey(cfg, b))
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, cacheKey(cfg, a))
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	c, rec := newContext(http.MethodGet, "/v1/bookings/9", map[string]string{echo.HeaderXRequestID: "req-1"})
	c.Set(userRefKey, "bob")

	err := RequestLogger(log)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	})(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, "bob", entry.Data["user_ref"])

	hook.Reset()
	c, _ = newContext(http.MethodGet, "/", nil)
	require.NoError(t, RequestLogger(log)(func(c echo.Context) error {
		return errors.New("boom")
	})(c))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
