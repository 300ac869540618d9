package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// Cookies writes the token cookies. Every token cookie is HttpOnly; Secure is
// configurable only so that plain-http development works.
type Cookies struct {
	Secure bool
	Path   string
}

func (k Cookies) path() string {
	if k.Path == "" {
		return "/"
	}
	return k.Path
}

func (k Cookies) CreateCookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     k.path(),
		Expires:  exp,
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) DeleteCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     k.path(),
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) setTokens(c echo.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	c.SetCookie(k.CreateCookie(accessCookie, access, accessExp))
	c.SetCookie(k.CreateCookie(refreshCookie, refresh, refreshExp))
}

func (k Cookies) clearTokens(c echo.Context) {
	c.SetCookie(k.DeleteCookie(accessCookie))
	c.SetCookie(k.DeleteCookie(refreshCookie))
}
