package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/internal/products"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	dbtypes "github.com/kidoralabs/kidora-backend/pkg/db/types"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	productsTable := `
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
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  size TEXT,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uq_cart_items_cart_product_size UNIQUE (cart_id, product_id, size)
);`
	require.NoError(t, db.Exec(productsTable).Error)
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	require.NoError(t, db.Exec("DELETE FROM cart_items").Error)
	require.NoError(t, db.Exec("DELETE FROM carts").Error)
	require.NoError(t, db.Exec("DELETE FROM products").Error)
	return db
}

func newCartService(db *gorm.DB) Service {
	return NewService(ServiceParams{
		Repo:     NewRepository(db),
		Products: products.NewRepository(db),
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
	})
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, sizes dbtypes.SizeStock) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Denim Jacket",
		Category:   "kids",
		Price:      decimal.NewFromInt(1500),
		Stock:      stock,
		SizesStock: sizes,
		IsActive:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAddItem_CreatesCartLazily(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)
	product := seedProduct(t, db, 10, nil)
	userID := uuid.New()

	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{
		ProductID: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)
	assert.Nil(t, dto.Items[0].Size)
	assert.True(t, dto.TotalAmount.Equal(decimal.NewFromInt(3000)))
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)
	product := seedProduct(t, db, 10, dbtypes.SizeStock{"M": 8})
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Size: "m", Quantity: 2})
	require.NoError(t, err)

	dto, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Size: " M ", Quantity: 3})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 5, dto.Items[0].Quantity)
	require.NotNil(t, dto.Items[0].Size)
	assert.Equal(t, "M", *dto.Items[0].Size)
}

func TestAddItem_InsufficientStockReportsAvailable(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)
	product := seedProduct(t, db, 10, dbtypes.SizeStock{"S": 2})
	userID := uuid.New()

	_, err := svc.AddItem(context.Background(), userID, AddItemInput{
		ProductID: product.ID,
		Size:      "S",
		Quantity:  3,
	})
	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())
	assert.Equal(t, "Available: 2", typed.Details())
}

func TestAddItem_MergeRespectsStockCeiling(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)
	product := seedProduct(t, db, 4, nil)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.Error(t, err)
	assert.Equal(t, "Available: 4", errors.As(err).Details())
}

// racingCartRepo simulates losing a first-insert race: a configurable
// lookup misses even though the winning row already sits in the table,
// and the insert reports the unique index as taken.
type racingCartRepo struct {
	Repository
	missNextFindItem bool
	missNextFindCart bool
	itemConflict     error
	cartConflict     error
}

func (r *racingCartRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if r.missNextFindCart {
		r.missNextFindCart = false
		return nil, gorm.ErrRecordNotFound
	}
	return r.Repository.FindByUser(ctx, userID)
}

func (r *racingCartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID, size *string) (*models.CartItem, error) {
	if r.missNextFindItem {
		r.missNextFindItem = false
		return nil, gorm.ErrRecordNotFound
	}
	return r.Repository.FindItem(ctx, cartID, productID, size)
}

func (r *racingCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	if r.itemConflict != nil {
		err := r.itemConflict
		r.itemConflict = nil
		return err
	}
	return r.Repository.CreateItem(ctx, item)
}

func (r *racingCartRepo) CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if r.cartConflict != nil {
		err := r.cartConflict
		r.cartConflict = nil
		return nil, err
	}
	return r.Repository.CreateForUser(ctx, userID)
}

func TestAddItem_InsertRaceMergesOntoWinningRow(t *testing.T) {
	db := setupCartTestDB(t)
	product := seedProduct(t, db, 10, nil)
	userID := uuid.New()

	userCart := &models.Cart{ID: uuid.New(), UserID: userID}
	require.NoError(t, db.Create(userCart).Error)
	require.NoError(t, db.Create(&models.CartItem{
		ID:        uuid.New(),
		CartID:    userCart.ID,
		ProductID: product.ID,
		Quantity:  2,
	}).Error)

	repo := &racingCartRepo{
		Repository:       NewRepository(db),
		missNextFindItem: true,
		itemConflict:     fmt.Errorf(`duplicate key value violates unique constraint "uq_cart_items_cart_product_nosize"`),
	}
	svc := NewService(ServiceParams{
		Repo:     repo,
		Products: products.NewRepository(db),
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
	})

	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 5, dto.Items[0].Quantity)
	assert.False(t, repo.missNextFindItem)
}

func TestAddItem_CartCreateRaceAdoptsWinningCart(t *testing.T) {
	db := setupCartTestDB(t)
	product := seedProduct(t, db, 10, nil)
	userID := uuid.New()

	// The winner's cart already exists, but this request only sees it
	// after its own create bounces off the unique index.
	winner := &models.Cart{ID: uuid.New(), UserID: userID}
	require.NoError(t, db.Create(winner).Error)

	repo := &racingCartRepo{
		Repository:       NewRepository(db),
		missNextFindCart: true,
		cartConflict:     fmt.Errorf(`duplicate key value violates unique constraint "carts_user_id_key"`),
	}
	svc := NewService(ServiceParams{
		Repo:     repo,
		Products: products.NewRepository(db),
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
	})

	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddItem_ProductNotFound(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		ProductID: uuid.New(),
		Quantity:  1,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestUpdateItemQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)
	product := seedProduct(t, db, 10, nil)
	userID := uuid.New()
	ctx := context.Background()

	dto, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateItemQuantity(ctx, userID, dto.Items[0].ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Items[0].Quantity)

	_, err = svc.UpdateItemQuantity(ctx, userID, dto.Items[0].ID, 0)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestRemoveItemAndClear(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)
	product := seedProduct(t, db, 10, nil)
	other := seedProduct(t, db, 10, nil)
	userID := uuid.New()
	ctx := context.Background()

	dto, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: other.ID, Quantity: 1})
	require.NoError(t, err)

	afterRemove, err := svc.RemoveItem(ctx, userID, dto.Items[0].ID)
	require.NoError(t, err)
	assert.Len(t, afterRemove.Items, 1)

	require.NoError(t, svc.Clear(ctx, userID))
	final, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, final.Items)
	assert.True(t, final.TotalAmount.IsZero())
}

func TestGet_AppliesDiscountedUnitPrice(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(db)
	discount := decimal.NewFromInt(10)
	product := &models.Product{
		ID:              uuid.New(),
		Name:            "Discounted Tee",
		Category:        "kids",
		Price:           decimal.NewFromInt(1000),
		DiscountPercent: &discount,
		Stock:           5,
		IsActive:        true,
	}
	require.NoError(t, db.Create(product).Error)
	userID := uuid.New()

	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.True(t, dto.Items[0].UnitPrice.Equal(decimal.NewFromInt(900)))
	assert.True(t, dto.TotalAmount.Equal(decimal.NewFromInt(1800)))
}
