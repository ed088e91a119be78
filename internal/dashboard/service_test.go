package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

func setupDashboardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'USER',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL,
  discount_percent NUMERIC,
  stock INTEGER NOT NULL DEFAULT 0,
  sizes_stock TEXT,
  images TEXT,
  video_url TEXT,
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
	for _, table := range []string{"return_requests", "order_items", "orders", "products", "users"} {
		require.NoError(t, conn.Exec("DELETE FROM "+table).Error)
	}
	return conn
}

func newDashboardService(conn *gorm.DB) Service {
	return NewService(ServiceParams{
		DB:     db.NewFromGorm(conn),
		Repo:   NewRepository(conn),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
}

func seedDashUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		FullName:     "Dash User",
		Role:         enums.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedDashProduct(t *testing.T, conn *gorm.DB, name string, stock, threshold int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:                uuid.New(),
		Name:              name,
		Category:          "kids",
		Price:             decimal.NewFromInt(500),
		Stock:             stock,
		LowStockThreshold: threshold,
		IsActive:          true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedDashOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, status enums.OrderStatus, paymentStatus enums.PaymentStatus, total int64, placedAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		CustomerName:  "Customer",
		Phone:         "01700000000",
		Address:       "House 1, Road 2",
		TotalAmount:   decimal.NewFromInt(total),
		Status:        status,
		PaymentStatus: paymentStatus,
		CreatedAt:     placedAt,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestStats_Counts(t *testing.T) {
	conn := setupDashboardTestDB(t)
	svc := newDashboardService(conn)
	ctx := context.Background()

	user := seedDashUser(t, conn, "one@example.com")
	seedDashUser(t, conn, "two@example.com")

	seedDashProduct(t, conn, "Plenty", 50, 5)
	seedDashProduct(t, conn, "Scarce", 3, 5)
	seedDashProduct(t, conn, "Empty", 0, 5)

	now := time.Now().UTC()
	seedDashOrder(t, conn, user.ID, enums.OrderStatusPending, enums.PaymentStatusPending, 1200, now.Add(-3*time.Hour))
	seedDashOrder(t, conn, user.ID, enums.OrderStatusPending, enums.PaymentStatusPaid, 800, now.Add(-2*time.Hour))
	delivered := seedDashOrder(t, conn, user.ID, enums.OrderStatusDelivered, enums.PaymentStatusPaid, 2550, now.Add(-time.Hour))

	openReturn := &models.ReturnRequest{
		ID:      uuid.New(),
		OrderID: delivered.ID,
		UserID:  user.ID,
		Reason:  "wrong size",
		Status:  enums.ReturnStatusPending,
	}
	require.NoError(t, conn.Create(openReturn).Error)
	closedReturn := &models.ReturnRequest{
		ID:      uuid.New(),
		OrderID: delivered.ID,
		UserID:  user.ID,
		Reason:  "changed mind",
		Status:  enums.ReturnStatusRejected,
	}
	require.NoError(t, conn.Create(closedReturn).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.LowStockProducts)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.OrdersByStatus[enums.OrderStatusPending])
	assert.Equal(t, int64(1), stats.OrdersByStatus[enums.OrderStatusDelivered])
	assert.Equal(t, int64(1), stats.PendingReturns)
	assert.True(t, stats.PaidRevenue.Equal(decimal.NewFromInt(3350)), "got %s", stats.PaidRevenue)
}

func TestStats_RecentOrdersNewestFirst(t *testing.T) {
	conn := setupDashboardTestDB(t)
	svc := newDashboardService(conn)
	ctx := context.Background()

	user := seedDashUser(t, conn, "buyer@example.com")
	now := time.Now().UTC()
	oldest := seedDashOrder(t, conn, user.ID, enums.OrderStatusDelivered, enums.PaymentStatusPaid, 100, now.Add(-48*time.Hour))
	newest := seedDashOrder(t, conn, user.ID, enums.OrderStatusPending, enums.PaymentStatusPending, 300, now)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, newest.ID, stats.RecentOrders[0].ID)
	assert.Equal(t, oldest.ID, stats.RecentOrders[1].ID)
}

func TestStats_EmptyStore(t *testing.T) {
	conn := setupDashboardTestDB(t)
	svc := newDashboardService(conn)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalOrders)
	assert.Empty(t, stats.RecentOrders)
	assert.True(t, stats.PaidRevenue.IsZero())
}
