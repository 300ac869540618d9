package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/middleware"
	"github.com/Skotchmaster/accounts/internal/service"
	"github.com/Skotchmaster/accounts/internal/transport"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies Cookies
	// PublicBaseURL overrides the scheme and host taken from the request
	// when building verification links.
	PublicBaseURL string
}

func (h *AuthHTTP) verifyURLBase(c echo.Context) string {
	base := strings.TrimRight(h.PublicBaseURL, "/")
	if base == "" {
		base = c.Scheme() + "://" + c.Request().Host
	}
	return base + apiPrefix + "/verify-email"
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	}, h.verifyURLBase(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, transport.NewApiResponse(http.StatusCreated,
		transport.UserData{User: *user},
		"New User Registered Successfully and Verification Email Sent"))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	res, err := h.Svc.Login(ctx, service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return httpError(err)
	}

	h.Cookies.setTokens(c, res.AccessToken, res.AccessExp, res.RefreshToken, res.RefreshExp)
	return c.JSON(http.StatusOK, transport.OK(transport.LoginData{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, "User Logged In Successfully"))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return unauthorized()
	}

	if err := h.Svc.Logout(c.Request().Context(), user.ID); err != nil {
		return httpError(err)
	}

	h.Cookies.clearTokens(c)
	return c.JSON(http.StatusOK, transport.OK(nil, "User Logged Out Successfully"))
}

// RefreshAccessToken takes the refresh token from its cookie, falling back to
// the body.
func (h *AuthHTTP) RefreshAccessToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	incoming := ""
	if ck, err := c.Cookie(refreshCookie); err == nil {
		incoming = ck.Value
	}
	if incoming == "" {
		var req transport.RefreshRequest
		if err := c.Bind(&req); err != nil {
			l.Warn("refresh_error", "status", 400, "error", err)
			return badRequest("invalid body")
		}
		incoming = req.RefreshToken
	}

	pair, err := h.Svc.RefreshAccessToken(ctx, incoming)
	if err != nil {
		return httpError(err)
	}

	h.Cookies.setTokens(c, pair.AccessToken, pair.AccessExp, pair.RefreshToken, pair.RefreshExp)
	return c.JSON(http.StatusOK, transport.OK(transport.TokenData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access Token Refreshed"))
}

func (h *AuthHTTP) CurrentUser(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return unauthorized()
	}
	return c.JSON(http.StatusOK, transport.OK(h.Svc.GetCurrentUser(user), "Current User Fetched Successfully"))
}
