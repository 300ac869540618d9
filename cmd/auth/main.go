package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/accounts/internal/config"
	"github.com/Skotchmaster/accounts/internal/db"
	"github.com/Skotchmaster/accounts/internal/hash"
	"github.com/Skotchmaster/accounts/internal/httpserver"
	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/mail"
	"github.com/Skotchmaster/accounts/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/accounts/internal/middleware/logging"
	"github.com/Skotchmaster/accounts/internal/notify"
	"github.com/Skotchmaster/accounts/internal/onetime"
	"github.com/Skotchmaster/accounts/internal/repo"
	"github.com/Skotchmaster/accounts/internal/service"
	"github.com/Skotchmaster/accounts/internal/tokens"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var sink notify.Sink = notify.LogSink{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		sink = notify.NewKafkaSink(cfg.KafkaBrokers, cfg.MailTopic)
		logger.Info("mail_sink", "kind", "kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.MailTopic)
	} else {
		logger.Info("mail_sink", "kind", "log")
	}
	mailer := notify.NewAsync(sink, logger, 10*time.Second)

	codec := tokens.NewCodec(tokens.Config{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        cfg.TokenIssuer,
	})

	svc := service.New(
		repo.New(gdb),
		hash.New(cfg.BcryptCost),
		codec,
		onetime.NewGenerator(onetime.DefaultTokenBytes, nil),
		mail.NewRenderer(cfg.ProductName, cfg.ProductLink),
		mailer,
		service.Options{
			SingleUseTTL:              cfg.SingleUseTokenTTL,
			ForgotPasswordRedirectURL: cfg.ForgotPasswordRedirectURL,
			RevokeSessionsOnPwdChange: cfg.RevokeSessionsOnPwdChange,
		},
	)

	e := newServer(cfg, logger, gdb, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := mailer.Close(); err != nil {
		logger.Error("mail_sink_close_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}

func newServer(cfg *config.Config, logger *slog.Logger, gdb *gorm.DB, svc *service.AuthService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler(e)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
	}))
	e.Use(middleware.BodyLimit("16K"))
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:         cfg.CookieSecure,
			TrustedOrigins: cfg.CORSOrigins,
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc:           svc,
			Cookies:       httpserver.Cookies{Secure: cfg.CookieSecure},
			PublicBaseURL: cfg.PublicBaseURL,
		},
		HealthHandler: &httpserver.HealthHTTP{
			Ping: func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		},
		Guard: httpserver.NewGuard(svc),
	})
	return e
}
