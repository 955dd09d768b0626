package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request.  Server errors are logged at
// error level, client errors at warn level, everything else at info.
// Handler errors are passed to echo's error handler first so the logged
// status is the one the client receives.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			entry := log.WithFields(logrus.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      c.Path(),
				"status":     res.Status,
				"latency":    time.Since(start).String(),
				"client_ip":  c.RealIP(),
				"request_id": requestID(c),
				"user_ref":   UserRef(c),
			})
			if err != nil {
				entry = entry.WithError(err)
			}
			switch {
			case res.Status >= 500:
				entry.Error("request failed")
			case res.Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
