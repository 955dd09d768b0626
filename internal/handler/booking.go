package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// BookingService is implemented by *booking.Manager.
type BookingService interface {
	CreateBooking(ctx context.Context, req booking.CreateBookingRequest) (*booking.Booking, error)
	CancelBooking(ctx context.Context, bookingID uint64) error
	GetBooking(ctx context.Context, bookingID uint64) (*booking.Booking, error)
	ListBookingsByUser(ctx context.Context, userRef string) ([]booking.Booking, error)
}

// AvailabilityService is implemented by *booking.Resolver.
type AvailabilityService interface {
	ListAvailableSeats(ctx context.Context, screeningID uint64) ([]uint64, error)
	SeatMap(ctx context.Context, screeningID uint64) (*booking.SeatMap, error)
}

// BookingHandler serves seat availability and booking endpoints.
type BookingHandler struct {
	Bookings     BookingService
	Availability AvailabilityService
	Log          logrus.FieldLogger
}

// NewBookingHandler wires the handler to its services.
func NewBookingHandler(bookings BookingService, availability AvailabilityService, log logrus.FieldLogger) *BookingHandler {
	if bookings == nil || availability == nil || log == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Availability: availability, Log: log}
}

// createBookingBody is the payload of POST /v1/bookings.  user_ref falls
// back to the X-User-Ref header.
type createBookingBody struct {
	ScreeningID uint64   `json:"screening_id" validate:"required"`
	SeatIDs     []uint64 `json:"seat_ids"     validate:"required,min=1,max=50,unique,dive,required"`
	UserRef     string   `json:"user_ref"     validate:"required,max=64"`
}

// CreateBooking handles POST /v1/bookings.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body createBookingBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.UserRef = strings.TrimSpace(body.UserRef)
	if body.UserRef == "" {
		if ref := middleware.UserRef(c); ref != "guest" {
			body.UserRef = ref
		}
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "invalid_request",
			"fields": validationDetails(err),
		})
	}

	b, err := h.Bookings.CreateBooking(c.Request().Context(), booking.CreateBookingRequest{
		ScreeningID: body.ScreeningID,
		SeatIDs:     body.SeatIDs,
		UserRef:     body.UserRef,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GetBooking handles GET /v1/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	b, err := h.Bookings.GetBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// CancelBooking handles DELETE /v1/bookings/:id.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	if err := h.Bookings.CancelBooking(c.Request().Context(), id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUserBookings handles GET /v1/users/:ref/bookings.
func (h *BookingHandler) ListUserBookings(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		return badRequest(c, "user reference is required")
	}
	list, err := h.Bookings.ListBookingsByUser(c.Request().Context(), ref)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_ref": ref, "bookings": list})
}

// AvailableSeats handles GET /v1/screenings/:id/seats/available.
func (h *BookingHandler) AvailableSeats(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid screening id")
	}
	ids, err := h.Availability.ListAvailableSeats(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"screening_id": id, "seat_ids": ids})
}

// SeatMap handles GET /v1/screenings/:id/seats.
func (h *BookingHandler) SeatMap(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid screening id")
	}
	m, err := h.Availability.SeatMap(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, m)
}
