package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kidoralabs/kidora-backend/pkg/enums"
)

// Order snapshots the shipping contact and the server-computed total at
// placement time. Item prices are frozen on OrderItem, so later product
// edits never change what the customer was charged.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	CustomerName        string              `gorm:"column:customer_name;not null"`
	Phone               string              `gorm:"column:phone;not null"`
	Address             string              `gorm:"column:address;not null"`
	City                *string             `gorm:"column:city"`
	State               *string             `gorm:"column:state"`
	PostalCode          *string             `gorm:"column:postal_code"`
	Country             *string             `gorm:"column:country"`
	Note                *string             `gorm:"column:note"`
	TotalAmount         decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status              enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	PaymentMethod       *string             `gorm:"column:payment_method"`
	PaymentProvider     *string             `gorm:"column:payment_provider"`
	PaymentSenderNumber *string             `gorm:"column:payment_sender_number"`
	TransactionID       *string             `gorm:"column:transaction_id"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem freezes the product name, selected size and unit price the
// moment the order is placed.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Size        *string         `gorm:"column:size"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
