package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/middleware"
	"github.com/Skotchmaster/accounts/internal/transport"
)

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forgot_password")

	var req transport.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("forgot_password_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}
	if err := h.Svc.ForgotPasswordRequest(ctx, req.Email); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.OK(nil, "Password Reset Mail has been sent to your EmailId"))
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_password_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}
	if err := h.Svc.ResetForgotPassword(ctx, c.Param("resetToken"), req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.OK(nil, "Password Reset Done"))
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_change_password")

	user, ok := middleware.UserFrom(c)
	if !ok {
		return unauthorized()
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}
	if err := h.Svc.ChangeCurrentPassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.OK(nil, "Password Changed Successfully"))
}
