package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist is created lazily, one per user.
type Wishlist struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// WishlistItem links a product to a wishlist. UserID is a legacy column
// from rows written before wishlists existed; reads match on either
// the wishlist id or the legacy user id.
type WishlistItem struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WishlistID uuid.UUID  `gorm:"column:wishlist_id;type:uuid;not null;uniqueIndex:uq_wishlist_items_wishlist_product"`
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid"`
	ProductID  uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_wishlist_items_wishlist_product"`
	Product    *Product   `gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
