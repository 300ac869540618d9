package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/middleware"
	"github.com/Skotchmaster/accounts/internal/transport"
)

func (h *AuthHTTP) VerifyEmail(c echo.Context) error {
	if err := h.Svc.VerifyEmail(c.Request().Context(), c.Param("verificationToken")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.OK(transport.VerifyEmailData{IsEmailVerified: true}, "Email is Verified"))
}

func (h *AuthHTTP) ResendEmailVerification(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return unauthorized()
	}
	if err := h.Svc.ResendEmailVerification(c.Request().Context(), user.ID, h.verifyURLBase(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.OK(nil, "Mail has been sent to your Email ID"))
}
