package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{TrustedOrigins: []string{"http://localhost:3000"}}))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func fetchToken(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	tok := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, tok)
	return tok
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	e := newTestServer()
	tok := fetchToken(t, e)

	tests := []struct {
		name    string
		session bool
		cookie  string
		header  string
		origin  string
		want    int
	}{
		{name: "no session cookie", want: http.StatusOK},
		{name: "session without token", session: true, cookie: tok, want: http.StatusForbidden},
		{name: "session with wrong token", session: true, cookie: tok, header: "nope", want: http.StatusForbidden},
		{name: "session with token", session: true, cookie: tok, header: tok, want: http.StatusOK},
		{name: "trusted origin", session: true, cookie: tok, header: tok, origin: "http://localhost:3000", want: http.StatusOK},
		{name: "foreign origin", session: true, cookie: tok, header: tok, origin: "http://evil.test", want: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tc.session {
				req.AddCookie(&http.Cookie{Name: "accessToken", Value: "a"})
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set("X-CSRF-Token", tc.header)
			}
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
