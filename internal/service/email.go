package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/accounts/internal/logging"
	"github.com/Skotchmaster/accounts/internal/models"
	"github.com/Skotchmaster/accounts/internal/notify"
	"github.com/Skotchmaster/accounts/internal/onetime"
	"github.com/Skotchmaster/accounts/internal/repo"
)

func (s *AuthService) VerifyEmail(ctx context.Context, raw string) error {
	l := logging.FromContext(ctx).With("svc", "auth.verify_email")

	raw = strings.TrimSpace(raw)
	if raw == "" {
		l.Warn("verify_email_failed", "status", 400, "reason", "missing token")
		return validationError("Email Verification Token is Missing", nil)
	}

	if err := s.Repo.ConsumeEmailVerification(ctx, onetime.Digest(raw), s.opts.Now()); err != nil {
		if errors.Is(err, repo.ErrTokenNotConsumed) {
			l.Warn("verify_email_failed", "status", 400, "reason", "invalid or expired token")
			return newError(ErrValidation, "Token is Invalid or Expired", ErrInvalidOrExpiredToken)
		}
		l.Error("verify_email_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}

	l.Info("verify_email_success", "status", 200)
	return nil
}

// ResendEmailVerification replaces any outstanding verification token; only
// the newest one can be consumed.
func (s *AuthService) ResendEmailVerification(ctx context.Context, userID uuid.UUID, verifyURLBase string) error {
	l := logging.FromContext(ctx).With("svc", "auth.resend_verification", "user_id", userID)

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("resend_verification_failed", "status", 404)
			return newError(ErrNotFound, "User doesn't exist!", err)
		}
		l.Error("resend_verification_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}
	if user.IsEmailVerified {
		l.Warn("resend_verification_failed", "status", 409, "reason", "already verified")
		return newError(ErrConflict, "Email is already verified!", nil)
	}

	tok, err := s.issueEmailVerification(ctx, user)
	if err != nil {
		l.Error("resend_verification_failed", "status", 500, "error", err)
		return internalError("Internal Server Error", err)
	}
	s.sendVerification(ctx, user, joinURL(verifyURLBase, tok.Raw))

	l.Info("resend_verification_success", "status", 200)
	return nil
}

func (s *AuthService) issueEmailVerification(ctx context.Context, user *models.User) (onetime.Token, error) {
	tok, err := s.OneTime.Generate(s.opts.SingleUseTTL)
	if err != nil {
		return onetime.Token{}, err
	}
	if err := s.Repo.SetEmailVerification(ctx, user.ID, tok.Hash, tok.ExpiresAt); err != nil {
		return onetime.Token{}, err
	}
	return tok, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User, link string) {
	msg, err := s.Mail.VerificationEmail(user.Username, link)
	if err != nil {
		logging.FromContext(ctx).Error("mail_render_failed", "kind", "verification", "user_id", user.ID, "error", err)
		return
	}
	s.send(ctx, user.Email, msg.Subject, msg.HTML, msg.Text)
}

func (s *AuthService) sendForgotPassword(ctx context.Context, user *models.User, link string) {
	msg, err := s.Mail.ForgotPasswordEmail(user.Username, link)
	if err != nil {
		logging.FromContext(ctx).Error("mail_render_failed", "kind", "forgot_password", "user_id", user.ID, "error", err)
		return
	}
	s.send(ctx, user.Email, msg.Subject, msg.HTML, msg.Text)
}

// send never fails the caller.
func (s *AuthService) send(ctx context.Context, to, subject, html, text string) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.Send(ctx, notify.Message{To: to, Subject: subject, HTML: html, Text: text})
	if err != nil {
		logging.FromContext(ctx).Error("mail_send_failed", "to", to, "subject", subject, "error", err)
	}
}
