package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/service"
	"github.com/Skotchmaster/accounts/internal/transport"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// httpError turns a service error into the structured error body. Internal
// details never reach the client.
func httpError(err error) *echo.HTTPError {
	se := service.AsError(err)
	code := statusOf(se)
	msg := se.Message
	if code == http.StatusInternalServerError && msg == "" {
		msg = http.StatusText(code)
	}
	return echo.NewHTTPError(code, transport.NewErrorResponse(code, msg, se.Details))
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, transport.NewErrorResponse(http.StatusBadRequest, msg, nil))
}

func unauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized,
		transport.NewErrorResponse(http.StatusUnauthorized, "Unauthorized request", nil))
}

func isInternal(err error) bool {
	return errors.Is(err, service.ErrInternal)
}

// ErrorHandler renders errors that did not come from a handler (routing,
// body limit, CORS) in the same envelope as handler errors.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = echo.NewHTTPError(http.StatusInternalServerError,
				transport.NewErrorResponse(http.StatusInternalServerError, "Internal Server Error", nil))
		}
		if msg, ok := he.Message.(string); ok {
			he = echo.NewHTTPError(he.Code, transport.NewErrorResponse(he.Code, msg, nil))
		}
		e.DefaultHTTPErrorHandler(he, c)
	}
}
