package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/accounts/internal/models"
)

// SetEmailVerification stores a fresh verification digest, replacing any
// outstanding one.
func (r *GormRepo) SetEmailVerification(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	err := r.updateByID(ctx, id, map[string]any{
		"email_verification_token_hash": hash,
		"email_verification_expiry":     expiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("set email verification: %w", err)
	}
	return nil
}

// ConsumeEmailVerification marks the owner of hash verified and clears the
// token pair in the same statement. Expired or unknown digests match nothing.
func (r *GormRepo) ConsumeEmailVerification(ctx context.Context, hash string, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email_verification_token_hash = ? AND email_verification_expiry > ?", hash, now.Unix()).
		Updates(map[string]any{
			"is_email_verified":             true,
			"email_verification_token_hash": nil,
			"email_verification_expiry":     nil,
		})
	if res.Error != nil {
		return fmt.Errorf("consume email verification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotConsumed
	}
	return nil
}

func (r *GormRepo) SetForgotPassword(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	err := r.updateByID(ctx, id, map[string]any{
		"forgot_password_token_hash": hash,
		"forgot_password_expiry":     expiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("set forgot password: %w", err)
	}
	return nil
}

// ConsumeForgotPassword stores passwordHash for the owner of hash and clears
// the reset pair in one conditional update. When revokeSession is set the
// refresh slot is emptied too.
func (r *GormRepo) ConsumeForgotPassword(ctx context.Context, hash, passwordHash string, revokeSession bool, now time.Time) error {
	fields := map[string]any{
		"password_hash":              passwordHash,
		"forgot_password_token_hash": nil,
		"forgot_password_expiry":     nil,
	}
	if revokeSession {
		fields["refresh_token"] = ""
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("forgot_password_token_hash = ? AND forgot_password_expiry > ?", hash, now.Unix()).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("consume forgot password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotConsumed
	}
	return nil
}

func (r *GormRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, revokeSession bool) error {
	fields := map[string]any{"password_hash": passwordHash}
	if revokeSession {
		fields["refresh_token"] = ""
	}
	if err := r.updateByID(ctx, id, fields); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
