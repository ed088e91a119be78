package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

func setupAddressTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	addresses := `
CREATE TABLE IF NOT EXISTS addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  label TEXT,
  recipient_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  line1 TEXT NOT NULL,
  line2 TEXT,
  city TEXT NOT NULL,
  postal_code TEXT,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(addresses).Error)
	require.NoError(t, conn.Exec("DELETE FROM addresses").Error)
	return conn
}

func newAddressService(conn *gorm.DB) Service {
	return NewService(ServiceParams{
		DB:     db.NewFromGorm(conn),
		Repo:   NewRepository(conn),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
}

func sampleInput(isDefault bool) UpsertInput {
	return UpsertInput{
		RecipientName: "Rahim Uddin",
		Phone:         "01811111111",
		Line1:         "House 4, Road 2",
		City:          "Dhaka",
		IsDefault:     isDefault,
	}
}

func TestCreate_DefaultFlagIsExclusive(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(conn)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, sampleInput(true))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.Create(ctx, userID, sampleInput(true))
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestSetDefault(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(conn)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, sampleInput(true))
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, sampleInput(false))
	require.NoError(t, err)

	promoted, err := svc.SetDefault(ctx, userID, second.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsDefault)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	for _, a := range list {
		if a.ID == first.ID {
			assert.False(t, a.IsDefault)
		}
	}
}

func TestUpdateAndDelete_OwnershipEnforced(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(conn)
	owner := uuid.New()
	stranger := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, sampleInput(false))
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger, created.ID, sampleInput(false))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())

	err = svc.Delete(ctx, stranger, created.ID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())

	input := sampleInput(false)
	input.City = "Chattogram"
	updated, err := svc.Update(ctx, owner, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Chattogram", updated.City)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}
