package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// OrderItemDTO is one frozen line of an order.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Size        *string         `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderDTO is the public order shape.
type OrderDTO struct {
	ID                  uuid.UUID           `json:"id"`
	UserID              uuid.UUID           `json:"userId"`
	CustomerName        string              `json:"customerName"`
	Phone               string              `json:"phone"`
	Address             string              `json:"address"`
	City                *string             `json:"city,omitempty"`
	State               *string             `json:"state,omitempty"`
	PostalCode          *string             `json:"postalCode,omitempty"`
	Country             *string             `json:"country,omitempty"`
	Note                *string             `json:"note,omitempty"`
	TotalAmount         decimal.Decimal     `json:"totalAmount"`
	Status              enums.OrderStatus   `json:"status"`
	PaymentStatus       enums.PaymentStatus `json:"paymentStatus"`
	PaymentMethod       *string             `json:"paymentMethod,omitempty"`
	PaymentProvider     *string             `json:"paymentProvider,omitempty"`
	PaymentSenderNumber *string             `json:"paymentSenderNumber,omitempty"`
	TransactionID       *string             `json:"transactionId,omitempty"`
	Items               []OrderItemDTO      `json:"items"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// OrderListDTO pairs an order page with its pagination metadata.
type OrderListDTO struct {
	Items      []OrderDTO      `json:"items"`
	Pagination pagination.Page `json:"pagination"`
}

// PlaceOrderItemInput is one requested line at checkout.
type PlaceOrderItemInput struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int
}

// PlaceOrderInput carries the checkout request. The total is always
// computed server side from live product prices.
type PlaceOrderInput struct {
	CustomerName        string
	Phone               string
	Address             string
	City                *string
	State               *string
	PostalCode          *string
	Country             *string
	Note                *string
	PaymentMethod       *string
	PaymentProvider     *string
	PaymentSenderNumber *string
	TransactionID       *string
	Items               []PlaceOrderItemInput
}

// ListFilters narrows admin order listings.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	UserID        *uuid.UUID
}

// Actor identifies who is performing an order operation.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}
