package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
)

// RegisterCatalog registers the read-only catalog routes.  Only the
// category tree goes through cache: movie exploration reports free seat
// counts, which change with every booking.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/movies/screenings", h.MovieScreenings)
	e.GET("/v1/categories", h.Categories, cache)
}
