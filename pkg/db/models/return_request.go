package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/pkg/enums"
)

// ReturnRequest is a customer-initiated return tied to a delivered order.
type ReturnRequest struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Reason    string             `gorm:"column:reason;not null"`
	Status    enums.ReturnStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	AdminNote *string            `gorm:"column:admin_note"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
