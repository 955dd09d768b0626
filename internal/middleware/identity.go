package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// UserRefHeader carries the opaque reference of the caller.  The service
// does not authenticate users; the reference is only used to group
// bookings and to key rate limits.
const UserRefHeader = "X-User-Ref"

const userRefKey = "user_ref"

// Identity stores the caller's user reference in the context.  Requests
// without the header are treated as "guest".
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ref := strings.TrimSpace(c.Request().Header.Get(UserRefHeader))
			if ref == "" {
				ref = "guest"
			}
			c.Set(userRefKey, ref)
			return next(c)
		}
	}
}

// UserRef returns the reference stored by Identity, or "guest".
func UserRef(c echo.Context) string {
	if s, ok := c.Get(userRefKey).(string); ok && s != "" {
		return s
	}
	return "guest"
}
