package auth

import (
	"strings"

	"github.com/kidoralabs/kidora-backend/pkg/config"
)

// IsAdminEmail reports whether the email is treated as an admin account.
// Three checks are kept for backwards compatibility with accounts
// created before roles existed: the configured admin email, the admin
// suffix convention, and the seeded dev account.
func IsAdminEmail(cfg config.AdminConfig, email string) bool {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return false
	}
	if cfg.Email != "" && normalized == strings.ToLower(strings.TrimSpace(cfg.Email)) {
		return true
	}
	if cfg.EmailSuffix != "" && strings.HasSuffix(normalized, strings.ToLower(cfg.EmailSuffix)) {
		return true
	}
	return cfg.DevFallback != "" && normalized == strings.ToLower(cfg.DevFallback)
}
