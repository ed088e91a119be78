package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/kidoralabs/kidora-backend/pkg/db/types"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// ProductDTO is the public product shape returned over the API.
type ProductDTO struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	Description       *string           `json:"description,omitempty"`
	Category          string            `json:"category"`
	Price             decimal.Decimal   `json:"price"`
	DiscountPercent   *decimal.Decimal  `json:"discountPercent,omitempty"`
	EffectivePrice    decimal.Decimal   `json:"effectivePrice"`
	Stock             int               `json:"stock"`
	SizesStock        dbtypes.SizeStock `json:"sizesStock,omitempty"`
	Images            []string          `json:"images"`
	VideoURL          *string           `json:"videoUrl,omitempty"`
	LowStockThreshold int               `json:"lowStockThreshold"`
	IsActive          bool              `json:"isActive"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// ProductListDTO pairs a product page with its pagination metadata.
type ProductListDTO struct {
	Items      []ProductDTO    `json:"items"`
	Pagination pagination.Page `json:"pagination"`
}

// ListFilters narrows product listings.
type ListFilters struct {
	Categories []string
	Search     string
}

// CreateProductInput carries admin-provided fields for a new listing.
type CreateProductInput struct {
	Name            string
	Description     *string
	Category        string
	Price           decimal.Decimal
	DiscountPercent *decimal.Decimal
	Stock           int
	SizesStock      dbtypes.SizeStock
	Images          []string
	VideoURL        *string
	LowStockThresh  *int
}

// UpdateProductInput mirrors CreateProductInput; nil pointers leave the
// stored value untouched.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	Category        *string
	Price           *decimal.Decimal
	DiscountPercent *decimal.Decimal
	Stock           *int
	SizesStock      dbtypes.SizeStock
	SizesStockSet   bool
	Images          []string
	ImagesSet       bool
	VideoURL        *string
	VideoURLSet     bool
	IsActive        *bool
	LowStockThresh  *int
}

// CategoryCount is one row of the category aggregation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
