package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-session/internal/upstream"
)

// ShowtimeHandler proxies the showtime listing from the upstream
// movie/showtime API.
type ShowtimeHandler struct {
	showtimes *upstream.ShowtimeClient
}

// NewShowtimeHandler constructs the handler.
func NewShowtimeHandler(sc *upstream.ShowtimeClient) *ShowtimeHandler {
	return &ShowtimeHandler{showtimes: sc}
}

// List handles GET /v1/showtimes.  An optional movie_id query parameter
// filters the listing.
func (h *ShowtimeHandler) List(c echo.Context) error {
	shows, err := h.showtimes.ListShowtimes(c.Request().Context(), c.QueryParam("movie_id"))
	if err != nil {
		var nf *upstream.NotFoundError
		if errors.As(err, &nf) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "showtime service unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": shows})
}
