package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes.  It deliberately touches no
// dependency: a booking backlog or a dead Redis must not make the
// process look down to the load balancer.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "smart-ticket"})
}
