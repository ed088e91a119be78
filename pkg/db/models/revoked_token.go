package models

import (
	"time"

	"github.com/google/uuid"
)

// RevokedToken records a logged-out token by its jti claim. Tokens are
// checked against this set on every authenticated request; rows past
// their expiry can be purged at any time.
type RevokedToken struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JTI       string    `gorm:"column:jti;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
