package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/transport"
)

type HealthHTTP struct {
	// Ping reports whether the store answers.
	Ping func(ctx context.Context) error
}

func (h *HealthHTTP) Healthcheck(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.OK(map[string]string{"message": "Server is Running"}, ""))
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	if h.Ping == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx := c.Request().Context()
	if err := h.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("not_ready", "status", 503, "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
