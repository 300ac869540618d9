package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/accounts/internal/hash"
	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/mail"
	"github.com/Skotchmaster/accounts/internal/models"
	"github.com/Skotchmaster/accounts/internal/notify"
	"github.com/Skotchmaster/accounts/internal/onetime"
	"github.com/Skotchmaster/accounts/internal/repo"
	"github.com/Skotchmaster/accounts/internal/tokens"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	SetRefreshToken(ctx context.Context, id uuid.UUID, digest string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	RotateRefreshToken(ctx context.Context, id uuid.UUID, prev, next string) error

	SetEmailVerification(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	ConsumeEmailVerification(ctx context.Context, hash string, now time.Time) error
	SetForgotPassword(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	ConsumeForgotPassword(ctx context.Context, hash, passwordHash string, revokeSession bool, now time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, revokeSession bool) error
}

type Options struct {
	// SingleUseTTL is the validity window of verification and reset tokens.
	SingleUseTTL              time.Duration
	ForgotPasswordRedirectURL string
	RevokeSessionsOnPwdChange bool
	Now                       func() time.Time
}

type AuthService struct {
	Repo     UserRepository
	Hasher   *hash.Hasher
	Tokens   *tokens.Codec
	OneTime  *onetime.Generator
	Mail     *mail.Renderer
	Notifier notify.Sink

	opts Options
}

func New(r UserRepository, h *hash.Hasher, codec *tokens.Codec, gen *onetime.Generator, renderer *mail.Renderer, sink notify.Sink, opts Options) *AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SingleUseTTL <= 0 {
		opts.SingleUseTTL = 20 * time.Minute
	}
	return &AuthService{
		Repo:     r,
		Hasher:   h,
		Tokens:   codec,
		OneTime:  gen,
		Mail:     renderer,
		Notifier: sink,
		opts:     opts,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type LoginResult struct {
	TokenPair
	User models.PublicUser
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, verifyURLBase string) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.normalize()
	if err := checkInput(in); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return nil, err
	}

	pwHash, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, internalError("Something Went Wrong, While Registering User", err)
	}

	user := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: pwHash,
		Role:         in.Role,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, newError(ErrConflict, "User with this email or username already exists", err)
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, internalError("Something Went Wrong, While Registering User", err)
	}

	tok, err := s.issueEmailVerification(ctx, &user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot store verification token", "error", err)
		return nil, internalError("Something Went Wrong, While Registering User", err)
	}
	s.sendVerification(ctx, &user, joinURL(verifyURLBase, tok.Raw))

	l.Info("register_success", "status", 201, "user_id", user.ID)
	pub := user.Public()
	return &pub, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	in.Email = normalizeEmail(in.Email)
	if err := checkInput(in); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return nil, err
	}

	user, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "status", 404, "reason", "user not found")
			return nil, newError(ErrNotFound, "User Not Found", err)
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, internalError("Internal Server Error", err)
	}

	if !s.Hasher.CheckPassword(user.PasswordHash, in.Password) {
		l.Warn("login_failed", "status", 400, "reason", "invalid credentials", "user_id", user.ID)
		return nil, newError(ErrValidation, "Invalid Credentials", ErrInvalidCredentials)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, internalError("Something went wrong while generating tokens", err)
	}
	if err := s.Repo.SetRefreshToken(ctx, user.ID, onetime.Digest(pair.RefreshToken)); err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, internalError("Something went wrong while generating tokens", err)
	}

	l.Info("login_success", "status", 200, "user_id", user.ID)
	return &LoginResult{TokenPair: *pair, User: user.Public()}, nil
}

// Logout empties the caller's refresh slot with a single update.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", userID)

	if err := s.Repo.ClearRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("logout_failed", "status", 401, "reason", "user not found")
			return newError(ErrUnauthorized, "Unauthorised Access", err)
		}
		l.Error("logout_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}
	l.Info("logout_success", "status", 200)
	return nil
}

// RefreshAccessToken honours only the refresh token currently held in the
// owner's slot and replaces it with a new one.
func (s *AuthService) RefreshAccessToken(ctx context.Context, incoming string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if incoming == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "missing token")
		return nil, newError(ErrUnauthorized, "Unauthorised Access", nil)
	}

	claims, err := s.Tokens.VerifyRefreshToken(incoming)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid token")
		return nil, newError(ErrUnauthorized, "Invalid Refresh Token", ErrInvalidRefreshToken)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "bad subject")
		return nil, newError(ErrUnauthorized, "Invalid Refresh Token", ErrInvalidRefreshToken)
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user not found")
			return nil, newError(ErrUnauthorized, "Invalid Refresh Token", ErrInvalidRefreshToken)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, internalError("Internal Server Error", err)
	}

	prev := onetime.Digest(incoming)
	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(prev), []byte(user.RefreshToken)) != 1 {
		l.Warn("refresh_failed", "status", 401, "reason", "superseded", "user_id", user.ID)
		return nil, newError(ErrUnauthorized, "Refresh Token is Expired", ErrSupersededToken)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, internalError("Something went wrong while generating tokens", err)
	}
	if err := s.Repo.RotateRefreshToken(ctx, user.ID, prev, onetime.Digest(pair.RefreshToken)); err != nil {
		if errors.Is(err, repo.ErrSlotMismatch) {
			l.Warn("refresh_failed", "status", 401, "reason", "lost rotation race", "user_id", user.ID)
			return nil, newError(ErrUnauthorized, "Refresh Token is Expired", ErrSupersededToken)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, internalError("Internal Server Error", err)
	}

	l.Info("refresh_success", "status", 200, "user_id", user.ID)
	return pair, nil
}

// Authenticate resolves the principal behind a verified access token.
func (s *AuthService) Authenticate(ctx context.Context, claims *tokens.AccessClaims) (*models.User, error) {
	if claims == nil {
		return nil, newError(ErrUnauthorized, "Unauthorised Access", nil)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Invalid Access Token", err)
	}
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, newError(ErrUnauthorized, "Invalid Access Token", err)
		}
		return nil, internalError("Internal Server Error", err)
	}
	return user, nil
}

// GetCurrentUser needs no store access; the guard already loaded the user.
func (s *AuthService) GetCurrentUser(user *models.User) models.PublicUser {
	return user.Public()
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	sub := tokens.Subject{
		ID:       user.ID.String(),
		Role:     user.Role,
		Email:    user.Email,
		Username: user.Username,
	}
	access, err := s.Tokens.IssueAccessToken(sub)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.IssueRefreshToken(sub)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		AccessExp:    access.ExpiresAt,
		RefreshExp:   refresh.ExpiresAt,
	}, nil
}

func joinURL(base, raw string) string {
	return strings.TrimRight(base, "/") + "/" + raw
}
