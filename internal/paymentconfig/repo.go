package paymentconfig

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db/models"
)

// Repository defines payment config persistence. The table keeps a
// single row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.PaymentConfig, error)
	Create(ctx context.Context, cfg *models.PaymentConfig) (*models.PaymentConfig, error)
	Save(ctx context.Context, cfg *models.PaymentConfig) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment config repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.PaymentConfig, error) {
	var cfg models.PaymentConfig
	if err := r.db.WithContext(ctx).Order("updated_at ASC").First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) Create(ctx context.Context, cfg *models.PaymentConfig) (*models.PaymentConfig, error) {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *repository) Save(ctx context.Context, cfg *models.PaymentConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
