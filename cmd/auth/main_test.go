package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/accounts/internal/config"
	"github.com/Skotchmaster/accounts/internal/db"
	"github.com/Skotchmaster/accounts/internal/hash"
	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/mail"
	"github.com/Skotchmaster/accounts/internal/notify"
	"github.com/Skotchmaster/accounts/internal/onetime"
	"github.com/Skotchmaster/accounts/internal/repo"
	"github.com/Skotchmaster/accounts/internal/service"
	"github.com/Skotchmaster/accounts/internal/tokens"
)

func newTestServer(t *testing.T, csrfEnabled bool) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		CORSOrigins:  []string{"http://localhost:3000"},
		CookieSecure: true,
		CSRFEnabled:  csrfEnabled,
	}
	logger := logging.NewWithWriter(io.Discard, "error")

	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	svc := service.New(repo.New(gdb), hash.New(4),
		tokens.NewCodec(tokens.Config{
			AccessSecret:  []byte("a"),
			RefreshSecret: []byte("r"),
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		}),
		onetime.NewGenerator(0, nil),
		mail.NewRenderer("Accounts", "http://localhost:8080"),
		notify.LogSink{Logger: logger},
		service.Options{ForgotPasswordRedirectURL: "http://localhost:3000/reset"},
	)
	return newServer(cfg, logger, gdb, svc)
}

func TestServer_CORSPreflight(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

func TestServer_BodyLimit(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, false)

	body := `{"email":"a@x.com","password":"` + strings.Repeat("x", 20*1024) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestServer_SecureHeadersAndHealth(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, true)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(echo.HeaderXFrameOptions))
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
}
