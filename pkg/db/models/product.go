package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	dbtypes "github.com/kidoralabs/kidora-backend/pkg/db/types"
)

// Product represents a catalog listing. Stock is the aggregate unit
// count; when SizesStock is present the aggregate always equals the sum
// of the size buckets.
type Product struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string            `gorm:"column:name;not null"`
	Description       *string           `gorm:"column:description"`
	Category          string            `gorm:"column:category;not null"`
	Price             decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountPercent   *decimal.Decimal  `gorm:"column:discount_percent;type:numeric(5,2)"`
	Stock             int               `gorm:"column:stock;not null;default:0"`
	SizesStock        dbtypes.SizeStock `gorm:"column:sizes_stock;type:jsonb"`
	Images            pq.StringArray    `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	VideoURL          *string           `gorm:"column:video_url"`
	LowStockThreshold int               `gorm:"column:low_stock_threshold;not null;default:5"`
	IsActive          bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveUnitPrice applies the discount percent, rounded to two
// decimal places.
func (p Product) EffectiveUnitPrice() decimal.Decimal {
	if p.DiscountPercent == nil || p.DiscountPercent.IsZero() {
		return p.Price.Round(2)
	}
	factor := decimal.NewFromInt(1).Sub(p.DiscountPercent.Div(decimal.NewFromInt(100)))
	return p.Price.Mul(factor).Round(2)
}
