package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	LogLevel string

	DBDriver    string
	DatabaseURL string

	JWTSecret       []byte
	RefreshSecret   []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TokenIssuer     string

	SingleUseTokenTTL time.Duration
	BcryptCost        int

	ForgotPasswordRedirectURL string
	PublicBaseURL             string
	CORSOrigins               []string

	KafkaBrokers []string
	MailTopic    string
	ProductName  string
	ProductLink  string

	CookieSecure              bool
	CSRFEnabled               bool
	RevokeSessionsOnPwdChange bool
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		Addr:     EnvDefault("AUTH_ADDR", ":8080"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:       []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret:   []byte(os.Getenv("REFRESH_SECRET")),
		AccessTokenTTL:  EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		TokenIssuer:     EnvDefault("TOKEN_ISSUER", "accounts"),

		SingleUseTokenTTL: EnvDurationDefault("SINGLE_USE_TOKEN_TTL", 20*time.Minute),
		BcryptCost:        EnvIntDefault("BCRYPT_COST", 12),

		ForgotPasswordRedirectURL: os.Getenv("FORGOT_PASSWORD_REDIRECT_URL"),
		PublicBaseURL:             os.Getenv("PUBLIC_BASE_URL"),
		CORSOrigins:               CSV(EnvDefault("CORS_ORIGIN", "http://localhost:3000")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		MailTopic:    EnvDefault("MAIL_TOPIC", "mail_events"),
		ProductName:  EnvDefault("MAIL_PRODUCT_NAME", "Accounts"),
		ProductLink:  EnvDefault("MAIL_PRODUCT_LINK", "http://localhost:8080"),

		CookieSecure:              EnvBoolDefault("COOKIE_SECURE", true),
		CSRFEnabled:               EnvBoolDefault("CSRF_ENABLED", false),
		RevokeSessionsOnPwdChange: EnvBoolDefault("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", true),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) == 0 {
		errs = append(errs, fmt.Errorf("missing required env %s", "JWT_SECRET"))
	}
	if len(c.RefreshSecret) == 0 {
		errs = append(errs, fmt.Errorf("missing required env %s", "REFRESH_SECRET"))
	}
	if len(c.JWTSecret) > 0 && string(c.JWTSecret) == string(c.RefreshSecret) {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_SECRET must differ"))
	}
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("missing required env %s", "DATABASE_URL"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.SingleUseTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	return errors.Join(errs...)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
