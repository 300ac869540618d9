package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/accounts/internal/db"
	"github.com/Skotchmaster/accounts/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return New(gdb)
}

func seedUser(t *testing.T, r *GormRepo, email, username string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Username: username, PasswordHash: "hash"}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func TestCreateUser_Conflicts(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "a@x.com", "alice")

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"same email", "a@x.com", "bob"},
		{"same username", "b@x.com", "alice"},
		{"both", "a@x.com", "alice"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.CreateUser(ctx, &models.User{Email: tc.email, Username: tc.username, PasswordHash: "h"})
			assert.ErrorIs(t, err, ErrUserAlreadyExist)
		})
	}

	require.NoError(t, r.CreateUser(ctx, &models.User{Email: "b@x.com", Username: "bob", PasswordHash: "h"}))
}

func TestFind(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")

	got, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.IsEmailVerified)
	assert.Nil(t, got.EmailVerificationTokenHash)

	got, err = r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = r.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshSlot(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")

	require.NoError(t, r.SetRefreshToken(ctx, u.ID, "one"))
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, u.ID, "stale", "two"), ErrSlotMismatch)
	require.NoError(t, r.RotateRefreshToken(ctx, u.ID, "one", "two"))
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, u.ID, "one", "three"), ErrSlotMismatch)

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", got.RefreshToken)

	require.NoError(t, r.ClearRefreshToken(ctx, u.ID))
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, u.ID, "", "x"), ErrSlotMismatch)
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, u.ID, "two", "x"), ErrSlotMismatch)

	assert.ErrorIs(t, r.ClearRefreshToken(ctx, uuid.New()), ErrUserNotFound)
}

func TestConsumeEmailVerification(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, r.SetEmailVerification(ctx, u.ID, "digest", now.Add(20*time.Minute)))
	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmailVerificationTokenHash)
	require.NotNil(t, got.EmailVerificationExpiry)

	assert.ErrorIs(t, r.ConsumeEmailVerification(ctx, "other", now), ErrTokenNotConsumed)
	require.NoError(t, r.ConsumeEmailVerification(ctx, "digest", now))
	assert.ErrorIs(t, r.ConsumeEmailVerification(ctx, "digest", now), ErrTokenNotConsumed)

	got, err = r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)
	assert.Nil(t, got.EmailVerificationTokenHash)
	assert.Nil(t, got.EmailVerificationExpiry)
}

func TestConsumeEmailVerification_Expired(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, r.SetEmailVerification(ctx, u.ID, "digest", now))
	assert.ErrorIs(t, r.ConsumeEmailVerification(ctx, "digest", now), ErrTokenNotConsumed)
	assert.ErrorIs(t, r.ConsumeEmailVerification(ctx, "digest", now.Add(time.Hour)), ErrTokenNotConsumed)
}

func TestConsumeEmailVerification_OnlyLatestValid(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, r.SetEmailVerification(ctx, u.ID, "first", now.Add(time.Minute)))
	require.NoError(t, r.SetEmailVerification(ctx, u.ID, "second", now.Add(time.Minute)))
	assert.ErrorIs(t, r.ConsumeEmailVerification(ctx, "first", now), ErrTokenNotConsumed)
	assert.NoError(t, r.ConsumeEmailVerification(ctx, "second", now))
}

func TestConsumeEmailVerification_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")
	now := time.Unix(1_700_000_000, 0)
	require.NoError(t, r.SetEmailVerification(ctx, u.ID, "digest", now.Add(time.Minute)))

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.ConsumeEmailVerification(ctx, "digest", now)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrTokenNotConsumed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestConsumeForgotPassword(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, r.SetRefreshToken(ctx, u.ID, "session"))
	require.NoError(t, r.SetForgotPassword(ctx, u.ID, "reset", now.Add(time.Minute)))

	assert.ErrorIs(t, r.ConsumeForgotPassword(ctx, "reset", "new", true, now.Add(2*time.Minute)), ErrTokenNotConsumed)
	require.NoError(t, r.ConsumeForgotPassword(ctx, "reset", "new", true, now))
	assert.ErrorIs(t, r.ConsumeForgotPassword(ctx, "reset", "newer", true, now), ErrTokenNotConsumed)

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)
	assert.Empty(t, got.RefreshToken)
	assert.Nil(t, got.ForgotPasswordTokenHash)
	assert.Nil(t, got.ForgotPasswordExpiry)
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@x.com", "alice")
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, "session"))

	require.NoError(t, r.UpdatePassword(ctx, u.ID, "h2", false))
	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)
	assert.Equal(t, "session", got.RefreshToken)

	require.NoError(t, r.UpdatePassword(ctx, u.ID, "h3", true))
	got, err = r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)
	assert.Empty(t, got.RefreshToken)
}
