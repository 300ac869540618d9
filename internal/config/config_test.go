package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "a", want: []string{"a"}},
		{name: "trims and skips blanks", in: " a, ,b ,", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvHelpers_FallBackOnBadValues(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "nope")
	t.Setenv("CFG_TEST_DUR", "ten minutes")
	t.Setenv("CFG_TEST_BOOL", "maybe")

	assert.Equal(t, 7, EnvIntDefault("CFG_TEST_INT", 7))
	assert.Equal(t, time.Minute, EnvDurationDefault("CFG_TEST_DUR", time.Minute))
	assert.True(t, EnvBoolDefault("CFG_TEST_BOOL", true))
	assert.Equal(t, "def", EnvDefault("CFG_TEST_MISSING", "def"))
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("REFRESH_SECRET", "refresh")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("COOKIE_SECURE", "false")

	cfg := Load()

	assert.Equal(t, []byte("access"), cfg.JWTSecret)
	assert.Equal(t, []byte("refresh"), cfg.RefreshSecret)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.RevokeSessionsOnPwdChange)
	require.NoError(t, cfg.Validate())
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		DBDriver:          "postgres",
		AccessTokenTTL:    time.Minute,
		RefreshTokenTTL:   time.Hour,
		SingleUseTokenTTL: time.Minute,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "REFRESH_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg.JWTSecret = []byte("same")
	cfg.RefreshSecret = []byte("same")
	cfg.DatabaseURL = "postgres://x"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}
