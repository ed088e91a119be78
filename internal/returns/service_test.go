package returns

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/internal/orders"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

func setupReturnsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  address TEXT NOT NULL,
  city TEXT,
  state TEXT,
  postal_code TEXT,
  country TEXT,
  note TEXT,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  payment_status TEXT NOT NULL DEFAULT 'PENDING',
  payment_method TEXT,
  payment_provider TEXT,
  payment_sender_number TEXT,
  transaction_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  size TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS return_requests (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  reason TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  admin_note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	for _, table := range []string{"return_requests", "order_items", "orders"} {
		require.NoError(t, conn.Exec("DELETE FROM "+table).Error)
	}
	return conn
}

func newReturnsService(conn *gorm.DB) Service {
	return NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Orders: orders.NewRepository(conn),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
}

func seedOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		CustomerName:  "Customer",
		Phone:         "01700000000",
		Address:       "Somewhere",
		TotalAmount:   decimal.NewFromInt(500),
		Status:        status,
		PaymentStatus: enums.PaymentStatusPaid,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestCreate_RequiresDeliveredOwnedOrder(t *testing.T) {
	conn := setupReturnsTestDB(t)
	svc := newReturnsService(conn)
	userID := uuid.New()
	ctx := context.Background()

	pending := seedOrder(t, conn, userID, enums.OrderStatusPending)
	_, err := svc.Create(ctx, userID, pending.ID, "wrong size")
	require.Error(t, err)
	assert.Equal(t, errors.CodeStateConflict, errors.As(err).Code())

	delivered := seedOrder(t, conn, userID, enums.OrderStatusDelivered)
	_, err = svc.Create(ctx, uuid.New(), delivered.ID, "wrong size")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())

	dto, err := svc.Create(ctx, userID, delivered.ID, "wrong size")
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusPending, dto.Status)

	// One open request per order.
	_, err = svc.Create(ctx, userID, delivered.ID, "changed my mind")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConflict, errors.As(err).Code())
}

func TestCreate_EmptyReason(t *testing.T) {
	conn := setupReturnsTestDB(t)
	svc := newReturnsService(conn)

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), "  ")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestReview_AndRefile(t *testing.T) {
	conn := setupReturnsTestDB(t)
	svc := newReturnsService(conn)
	userID := uuid.New()
	ctx := context.Background()

	order := seedOrder(t, conn, userID, enums.OrderStatusDelivered)
	dto, err := svc.Create(ctx, userID, order.ID, "defective item")
	require.NoError(t, err)

	note := "photos verified"
	reviewed, err := svc.Review(ctx, dto.ID, ReviewInput{Status: "rejected", AdminNote: &note})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.AdminNote)
	assert.Equal(t, "photos verified", *reviewed.AdminNote)

	// A rejected request is no longer open, so a new one can be filed.
	_, err = svc.Create(ctx, userID, order.ID, "second attempt")
	require.NoError(t, err)

	_, err = svc.Review(ctx, dto.ID, ReviewInput{Status: "lost"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestListMineAndAdminList(t *testing.T) {
	conn := setupReturnsTestDB(t)
	svc := newReturnsService(conn)
	userID := uuid.New()
	ctx := context.Background()

	first := seedOrder(t, conn, userID, enums.OrderStatusDelivered)
	second := seedOrder(t, conn, userID, enums.OrderStatusDelivered)
	_, err := svc.Create(ctx, userID, first.ID, "too small")
	require.NoError(t, err)
	filed, err := svc.Create(ctx, userID, second.ID, "color mismatch")
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.Review(ctx, filed.ID, ReviewInput{Status: "approved"})
	require.NoError(t, err)

	approved := enums.ReturnStatusApproved
	page, err := svc.List(ctx, &approved, pagination.Params{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, filed.ID, page.Items[0].ID)
}
