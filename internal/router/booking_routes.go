package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
)

// RegisterBookings registers seat availability and booking routes under
// /v1.  limit wraps the routes that write bookings.  Availability is
// always read live.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/screenings/:id/seats", h.SeatMap)
	g.GET("/screenings/:id/seats/available", h.AvailableSeats)

	g.POST("/bookings", h.CreateBooking, limit)
	g.GET("/bookings/:id", h.GetBooking)
	g.DELETE("/bookings/:id", h.CancelBooking, limit)
	g.GET("/users/:ref/bookings", h.ListUserBookings)
}
