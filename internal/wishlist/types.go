package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WishlistItemDTO is one saved product with its live snapshot.
type WishlistItemDTO struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"productId"`
	Name           string          `json:"name"`
	Image          *string         `json:"image,omitempty"`
	Price          decimal.Decimal `json:"price"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	InStock        bool            `json:"inStock"`
	AddedAt        time.Time       `json:"addedAt"`
}

// WishlistDTO is the full wishlist for a user.
type WishlistDTO struct {
	ID    uuid.UUID         `json:"id"`
	Items []WishlistItemDTO `json:"items"`
}

// ToggleResult reports whether the toggle added or removed the product.
type ToggleResult struct {
	Added    bool         `json:"added"`
	Wishlist *WishlistDTO `json:"wishlist"`
}
