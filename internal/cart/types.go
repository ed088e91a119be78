package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemDTO is one line of the cart with the current product snapshot
// attached. UnitPrice reflects the product's live discounted price; cart
// lines are never price-frozen.
type CartItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     *string         `json:"image,omitempty"`
	Size      *string         `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartDTO is the full cart for a user.
type CartDTO struct {
	ID          uuid.UUID       `json:"id"`
	Items       []CartItemDTO   `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// AddItemInput carries the add-to-cart request.
type AddItemInput struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int
}
