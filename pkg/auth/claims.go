package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// The subject claim is the user's email.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Email returns the subject claim.
func (c *AccessTokenClaims) Email() string {
	return c.Subject
}
