package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/accounts/internal/models"
)

func TestOpen_SQLiteInMemory(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, "sqlite", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	require.NoError(t, Ping(ctx, db))

	u := models.User{Email: "a@x.com", Username: "alice", PasswordHash: "h"}
	require.NoError(t, db.Create(&u).Error)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)

	dup := models.User{Email: "a@x.com", Username: "bob", PasswordHash: "h"}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)

	_, err = Open(context.Background(), "postgres", "")
	assert.Error(t, err)
}

func TestOpen_Postgres(t *testing.T) {
	dsn := os.Getenv("AUTH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AUTH_TEST_DATABASE_URL is required for tests")
	}

	db, err := Open(context.Background(), "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(db))
}
