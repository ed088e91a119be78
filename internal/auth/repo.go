package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db/models"
)

// Repository persists reset codes and revoked tokens.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateResetCode(ctx context.Context, code *models.PasswordResetCode) error
	FindActiveResetCode(ctx context.Context, email, code string, now time.Time) (*models.PasswordResetCode, error)
	InvalidateResetCodes(ctx context.Context, email string) error
	MarkResetCodeUsed(ctx context.Context, id uuid.UUID) error
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an auth repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateResetCode(ctx context.Context, code *models.PasswordResetCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) FindActiveResetCode(ctx context.Context, email, code string, now time.Time) (*models.PasswordResetCode, error) {
	var row models.PasswordResetCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND used = ? AND expires_at > ?", email, code, false, now).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// InvalidateResetCodes marks every outstanding code for the email as
// used, keeping a single redeemable code at a time.
func (r *repository) InvalidateResetCodes(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetCode{}).
		Where("email = ? AND used = ?", email, false).
		Update("used", true).Error
}

func (r *repository) MarkResetCodeUsed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetCode{}).
		Where("id = ?", id).
		Update("used", true).Error
}

func (r *repository) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	token := &models.RevokedToken{
		ID:        uuid.New(),
		JTI:       jti,
		ExpiresAt: expiresAt,
	}
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *repository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) PurgeExpiredTokens(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.RevokedToken{}).Error
}
