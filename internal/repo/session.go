package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/accounts/internal/models"
)

// SetRefreshToken overwrites the refresh slot, dropping whatever session was
// there before.
func (r *GormRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, digest string) error {
	if err := r.updateByID(ctx, id, map[string]any{"refresh_token": digest}); err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	return nil
}

func (r *GormRepo) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	if err := r.updateByID(ctx, id, map[string]any{"refresh_token": ""}); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// RotateRefreshToken swaps the slot from prev to next only if it still holds
// prev. Two callers presenting the same token cannot both win.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, id uuid.UUID, prev, next string) error {
	if prev == "" {
		return ErrSlotMismatch
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, prev).
		Update("refresh_token", next)
	if res.Error != nil {
		return fmt.Errorf("rotate refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSlotMismatch
	}
	return nil
}
