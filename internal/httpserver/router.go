package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/middleware"
	"github.com/Skotchmaster/accounts/internal/service"
)

const apiPrefix = "/api/v1/users"

type Deps struct {
	AuthHandler   *AuthHTTP
	HealthHandler *HealthHTTP
	// Guard is the Access Guard applied to private routes.
	Guard echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)
	e.GET("/api/v1/healthcheck", d.HealthHandler.Healthcheck)

	users := e.Group(apiPrefix)
	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/refresh-token", d.AuthHandler.RefreshAccessToken)
	users.GET("/verify-email/:verificationToken", d.AuthHandler.VerifyEmail)
	users.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	users.POST("/reset-password/:resetToken", d.AuthHandler.ResetPassword)

	private := users.Group("", d.Guard)
	private.POST("/logout", d.AuthHandler.Logout)
	private.GET("/current-user", d.AuthHandler.CurrentUser)
	private.POST("/resend-email-verification", d.AuthHandler.ResendEmailVerification)
	private.POST("/change-password", d.AuthHandler.ChangePassword)
}

// NewGuard builds the Access Guard over the service.
func NewGuard(svc *service.AuthService) echo.MiddlewareFunc {
	return middleware.RequireUser(svc.Tokens, svc, isInternal)
}
