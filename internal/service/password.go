package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/onetime"
	"github.com/Skotchmaster/accounts/internal/repo"
)

// ForgotPasswordRequest answers the same way whether or not the address has
// an account. Mail is only sent when it does.
func (s *AuthService) ForgotPasswordRequest(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	in := forgotPasswordInput{Email: normalizeEmail(email)}
	if err := checkInput(in); err != nil {
		l.Warn("forgot_password_failed", "status", 400, "error", err)
		return err
	}

	user, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Info("forgot_password_unknown_email", "status", 200)
			return nil
		}
		l.Error("forgot_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}

	tok, err := s.OneTime.Generate(s.opts.SingleUseTTL)
	if err != nil {
		l.Error("forgot_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}
	if err := s.Repo.SetForgotPassword(ctx, user.ID, tok.Hash, tok.ExpiresAt); err != nil {
		l.Error("forgot_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}
	s.sendForgotPassword(ctx, user, joinURL(s.opts.ForgotPasswordRedirectURL, tok.Raw))

	l.Info("forgot_password_success", "status", 200, "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetForgotPassword(ctx context.Context, raw, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	raw = strings.TrimSpace(raw)
	if raw == "" {
		l.Warn("reset_password_failed", "status", 400, "reason", "missing token")
		return validationError("Reset Token is Missing", nil)
	}
	if err := checkInput(newPasswordInput{NewPassword: newPassword}); err != nil {
		l.Warn("reset_password_failed", "status", 400, "error", err)
		return err
	}

	pwHash, err := s.Hasher.HashPassword(newPassword)
	if err != nil {
		l.Error("reset_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}

	err = s.Repo.ConsumeForgotPassword(ctx, onetime.Digest(raw), pwHash, s.opts.RevokeSessionsOnPwdChange, s.opts.Now())
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotConsumed) {
			l.Warn("reset_password_failed", "status", 409, "reason", "invalid or expired token")
			return newError(ErrConflict, "Token is Invalid or Expired", ErrInvalidOrExpiredToken)
		}
		l.Error("reset_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}

	l.Info("reset_password_success", "status", 200)
	return nil
}

func (s *AuthService) ChangeCurrentPassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	if err := checkInput(changePasswordInput{OldPassword: oldPassword, NewPassword: newPassword}); err != nil {
		l.Warn("change_password_failed", "status", 400, "error", err)
		return err
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("change_password_failed", "status", 404)
			return newError(ErrNotFound, "User not found!", err)
		}
		l.Error("change_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}

	if !s.Hasher.CheckPassword(user.PasswordHash, oldPassword) {
		l.Warn("change_password_failed", "status", 400, "reason", "invalid old password")
		return newError(ErrValidation, "Invalid Old Password", ErrInvalidCredentials)
	}

	pwHash, err := s.Hasher.HashPassword(newPassword)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}
	if err := s.Repo.UpdatePassword(ctx, user.ID, pwHash, s.opts.RevokeSessionsOnPwdChange); err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}

	l.Info("change_password_success", "status", 200)
	return nil
}
