package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db/models"
)

// Repository defines wishlist persistence used by the service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	ListItems(ctx context.Context, wishlistID, userID uuid.UUID) ([]models.WishlistItem, error)
	FindItem(ctx context.Context, wishlistID, userID, productID uuid.UUID) (*models.WishlistItem, error)
	CreateItem(ctx context.Context, item *models.WishlistItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wishlist).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *repository) CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	wishlist := &models.Wishlist{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(wishlist).Error; err != nil {
		return nil, err
	}
	return wishlist, nil
}

// ListItems matches on the wishlist id or the legacy per-user column so
// rows written before wishlists existed still show up.
func (r *repository) ListItems(ctx context.Context, wishlistID, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("wishlist_id = ? OR user_id = ?", wishlistID, userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItem(ctx context.Context, wishlistID, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("(wishlist_id = ? OR user_id = ?) AND product_id = ?", wishlistID, userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.WishlistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.WishlistItem{}).Error
}
