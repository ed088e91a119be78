package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentConfig holds the mobile wallet numbers customers pay into.
// The table keeps a single row; admin updates upsert it.
type PaymentConfig struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BkashNumber  *string   `gorm:"column:bkash_number"`
	NagadNumber  *string   `gorm:"column:nagad_number"`
	RocketNumber *string   `gorm:"column:rocket_number"`
	Instructions *string   `gorm:"column:instructions"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
