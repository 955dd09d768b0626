package router_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/database/dbtest"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/pricing"
	"github.com/iliyamo/cinema-booking/internal/router"
)

func newAPI(t *testing.T) (*echo.Echo, dbtest.Fixture) {
	t.Helper()
	db := dbtest.New(t)
	fx := dbtest.Seed(t, db, dbtest.Room{
		Name: "R1",
		Tiers: []dbtest.Tier{
			{Name: "NORMAL", Type: "fixed", Value: 200},
			{Name: "VIP", Type: "percentage", Value: 50},
		},
		Seats:     [][2]string{{"S1", "NORMAL"}, {"S2", "VIP"}},
		BasePrice: 1000,
	})
	log, _ := test.NewNullLogger()
	engine := pricing.Engine{}
	retry := database.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	e := echo.New()
	router.RegisterRoutes(e, router.Deps{
		DB: db,
		Bookings: handler.NewBookingHandler(
			booking.NewManager(db, catalog.NewStore(db), engine, retry, log),
			booking.NewResolver(db, engine),
			log,
		),
		Catalog:   handler.NewCatalogHandler(catalog.NewExplorer(db, engine), log),
		RateLimit: config.RateLimitConfig{Enabled: true},
		Cache:     config.CacheConfig{Enabled: true},
		Log:       log,
	})
	return e, fx
}

func call(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-User-Ref", "alice")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBookingFlow(t *testing.T) {
	e, fx := newAPI(t)
	s1, s2 := fx.Seats["S1"], fx.Seats["S2"]
	seatsURL := fmt.Sprintf("/v1/screenings/%d/seats/available", fx.ScreeningID)

	rec := call(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := fmt.Sprintf(`{"screening_id":%d,"seat_ids":[%d,%d]}`, fx.ScreeningID, s1, s2)
	rec = call(e, http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b booking.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.EqualValues(t, 2700, b.TotalAmount)
	assert.Equal(t, "alice", b.UserRef)

	rec = call(e, http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seat_unavailable"`)

	rec = call(e, http.MethodGet, seatsURL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"screening_id":%d,"seat_ids":[]}`, fx.ScreeningID), rec.Body.String())

	rec = call(e, http.MethodGet, "/v1/users/alice/bookings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), b.Reference)

	rec = call(e, http.MethodDelete, fmt.Sprintf("/v1/bookings/%d", b.ID), "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(e, http.MethodGet, fmt.Sprintf("/v1/bookings/%d", b.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, http.MethodGet, seatsURL, "")
	assert.JSONEq(t, fmt.Sprintf(`{"screening_id":%d,"seat_ids":[%d,%d]}`, fx.ScreeningID, s1, s2), rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	e, _ := newAPI(t)

	rec := call(e, http.MethodGet, "/v1/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":[]}`, rec.Body.String())

	rec = call(e, http.MethodGet, "/v1/movies/screenings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Movies []catalog.MovieScreenings `json:"movies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Movies, 1)
	assert.Len(t, out.Movies[0].Screenings, 1)
}
