package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetCode is a short-lived one-time code mailed to the user.
// Issuing a new code marks every earlier unused code for that email as
// used, so only the latest one can redeem.
type PasswordResetCode struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Used      bool      `gorm:"column:used;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
