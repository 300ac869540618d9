package middleware

import (
	"context"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/models"
	"github.com/Skotchmaster/accounts/internal/tokens"
	"github.com/Skotchmaster/accounts/internal/transport"
)

const (
	claimsKey = "claims"
	userKey   = "user"

	// TokenLookup reads the access token from the cookie first, then from
	// the Authorization header.
	TokenLookup = "cookie:accessToken,header:Authorization:Bearer "
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (*tokens.AccessClaims, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, claims *tokens.AccessClaims) (*models.User, error)
}

func unauthorized(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized,
		transport.NewErrorResponse(http.StatusUnauthorized, msg, nil))
}

// RequireUser rejects the request with 401 unless it carries a valid access
// token whose subject still exists. The loaded user is available through
// UserFrom. Authenticator errors for which isInternal reports true become 500.
func RequireUser(v TokenVerifier, a Authenticator, isInternal func(error) bool) echo.MiddlewareFunc {
	jwtMw := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: TokenLookup,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return v.VerifyAccessToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return unauthorized("Unauthorized request")
		},
	})

	load := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			claims, ok := c.Get(claimsKey).(*tokens.AccessClaims)
			if !ok {
				return unauthorized("Unauthorized request")
			}
			user, err := a.Authenticate(ctx, claims)
			if err != nil {
				if isInternal != nil && isInternal(err) {
					logging.FromContext(ctx).Error("auth_failed", "status", 500, "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError,
						transport.NewErrorResponse(http.StatusInternalServerError, "Internal Server Error", nil))
				}
				logging.FromContext(ctx).Warn("auth_failed", "status", 401, "reason", "unknown subject", "error", err)
				return unauthorized("Invalid Access Token")
			}
			c.Set(userKey, user)
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMw(load(next))
	}
}

func UserFrom(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok && u != nil
}
