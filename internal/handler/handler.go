// Package handler exposes the booking core over HTTP.  Handlers depend
// on small service interfaces so they can be tested without a database.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/pricing"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator using struct `validate` tags.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// validationDetails flattens validator errors into field -> tag.
func validationDetails(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": msg})
}

// writeError maps service errors onto HTTP responses.  Errors with no
// mapping are logged to log and answered with 500.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
	var unavailable *booking.SeatUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "seat_unavailable",
			"seat_ids": unavailable.SeatIDs,
			"timeout":  unavailable.Timeout,
		})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, booking.ErrInvalidRequest), errors.Is(err, catalog.ErrInvalidWindow):
		return badRequest(c, err.Error())
	case errors.Is(err, pricing.ErrInvalidTier), errors.Is(err, pricing.ErrInvalidAmount):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid_price", "message": err.Error()})
	case errors.Is(err, booking.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "unavailable"})
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error("unhandled error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal"})
}
