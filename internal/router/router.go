// Package router registers the HTTP API on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// Deps carries what the routes need.  Redis may be nil, in which case
// rate limiting and caching pass requests through.
type Deps struct {
	DB        handler.Pinger
	Bookings  *handler.BookingHandler
	Catalog   *handler.CatalogHandler
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       logrus.FieldLogger
}

// RegisterRoutes installs the global middleware and every route.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Validator = handler.NewValidator()
	e.Use(middleware.Identity())
	e.Use(middleware.RequestLogger(d.Log))

	e.GET("/healthz", handler.Health(d.DB))
	RegisterBookings(e, d.Bookings, middleware.RateLimit(d.RateLimit, d.Redis, d.Log))
	RegisterCatalog(e, d.Catalog, middleware.Cache(d.Cache, d.Redis, d.Log))
}
