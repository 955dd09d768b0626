package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/catalog"
)

// CatalogService is implemented by *catalog.Explorer.
type CatalogService interface {
	Upcoming(ctx context.Context, from, to time.Time) ([]catalog.MovieScreenings, error)
	Categories(ctx context.Context) ([]*catalog.CategoryNode, error)
}

// defaultWindow is how far ahead movie exploration looks when the
// request names no end.
const defaultWindow = 7 * 24 * time.Hour

// CatalogHandler serves read-only catalog endpoints.
type CatalogHandler struct {
	Catalog CatalogService
	Log     logrus.FieldLogger
	now     func() time.Time
}

// NewCatalogHandler wires the handler to svc.
func NewCatalogHandler(svc CatalogService, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{Catalog: svc, Log: log, now: time.Now}
}

// MovieScreenings handles GET /v1/movies/screenings?from=&to=.  Both
// bounds are RFC 3339 timestamps; from defaults to now and to defaults
// to a week after from.
func (h *CatalogHandler) MovieScreenings(c echo.Context) error {
	from := h.now().UTC()
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "from must be an RFC 3339 timestamp")
		}
		from = t
	}
	to := from.Add(defaultWindow)
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "to must be an RFC 3339 timestamp")
		}
		to = t
	}

	movies, err := h.Catalog.Upcoming(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from":   from.UTC(),
		"to":     to.UTC(),
		"movies": movies,
	})
}

// Categories handles GET /v1/categories.
func (h *CatalogHandler) Categories(c echo.Context) error {
	roots, err := h.Catalog.Categories(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": roots})
}
