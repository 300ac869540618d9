// Package csrf implements double-submit cookie protection for the cookie
// based session. Requests authenticated only by a Bearer header are not
// exposed to CSRF and pass through.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/transport"
)

type Config struct {
	CookieName string
	HeaderName string
	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	// TrustedOrigins may send unsafe requests besides the server's own host.
	TrustedOrigins []string
	// SessionCookies are the cookies whose presence makes a request subject
	// to the check.
	SessionCookies []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:     "XSRF-TOKEN",
		HeaderName:     "X-CSRF-Token",
		CookiePath:     "/",
		Secure:         true,
		SameSite:       http.SameSiteLaxMode,
		MaxAge:         24 * time.Hour,
		SessionCookies: []string{"accessToken", "refreshToken"},
	}
}

func forbidden(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusForbidden, transport.NewErrorResponse(http.StatusForbidden, msg, nil))
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.SessionCookies == nil {
		cfg.SessionCookies = def.SessionCookies
	}

	trusted := make(map[string]struct{}, len(cfg.TrustedOrigins))
	for _, o := range cfg.TrustedOrigins {
		trusted[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			token := readCookie(req, cfg.CookieName)
			if token == "" {
				token = rand.Text()
			}
			setCSRFCookie(c, cfg, token)

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}

			if !hasSession(req, cfg.SessionCookies) {
				return next(c)
			}
			if !originAllowed(req, trusted) {
				return forbidden("Invalid origin")
			}
			provided := req.Header.Get(cfg.HeaderName)
			if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
				return forbidden("Invalid CSRF token")
			}
			return next(c)
		}
	}
}

func setCSRFCookie(c echo.Context, cfg Config, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     cfg.CookiePath,
		Secure:   cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: cfg.SameSite,
	})
}

func readCookie(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func hasSession(req *http.Request, names []string) bool {
	for _, n := range names {
		if readCookie(req, n) != "" {
			return true
		}
	}
	return false
}

// originAllowed accepts a missing Origin only when Referer is missing too;
// some clients send neither on same-origin requests.
func originAllowed(r *http.Request, trusted map[string]struct{}) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
		if origin == "" {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	_, ok := trusted[strings.ToLower(u.Scheme+"://"+u.Host)]
	return ok
}
