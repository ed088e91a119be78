package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// UserDTO is the public account shape. The password hash never leaves
// the service layer.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Phone       *string    `json:"phone,omitempty"`
	Role        enums.Role `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// UserListDTO pairs a user page with its pagination metadata.
type UserListDTO struct {
	Items      []UserDTO       `json:"items"`
	Pagination pagination.Page `json:"pagination"`
}

// ListFilters narrows admin user listings.
type ListFilters struct {
	Search string
	Role   *enums.Role
}
