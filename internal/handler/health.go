package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness.  It deliberately checks nothing
// downstream: the service degrades gracefully without the database or
// the broker, and a liveness probe must not flap with them.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
