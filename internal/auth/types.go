package auth

import (
	"github.com/kidoralabs/kidora-backend/internal/users"
)

// RegisterInput carries a signup request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
}

// LoginInput carries a login request.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken string        `json:"accessToken"`
	TokenType   string        `json:"tokenType"`
	User        users.UserDTO `json:"user"`
}

// UpdateProfileInput carries a partial profile update. PhoneSet
// distinguishes clearing the phone from leaving it untouched.
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
	PhoneSet bool
}

// ChangePasswordInput carries a password change for a logged-in user.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ResetPasswordInput redeems a mailed reset code.
type ResetPasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}
