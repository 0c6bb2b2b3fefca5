package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/service/auth"
	"github.com/mc-consultoria/proteccion-civil/internal/transport"
)

type HealthHandler struct {
	PingMessage string
	Auth        *auth.Service
}

func (h *HealthHandler) Ping(c echo.Context) error {
	msg := h.PingMessage
	if msg == "" {
		msg = "ping"
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func (h *HealthHandler) TestDB(c echo.Context) error {
	now, err := h.Auth.TestDB(c.Request().Context())
	if err != nil {
		logging.FromContext(c.Request().Context()).With("handler", "test_db").
			Warn("test_db_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgDBUnreachable)
	}
	return c.JSON(http.StatusOK, transport.OK(map[string]string{"now": now}))
}

func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready always answers 200 and reports the database state.
func (h *HealthHandler) Ready(c echo.Context) error {
	db := "up"
	if _, err := h.Auth.TestDB(c.Request().Context()); err != nil {
		db = "down"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "database": db})
}
