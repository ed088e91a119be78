package banners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db/models"
)

// Repository defines hero banner persistence used by the service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, banner *models.HeroBanner) (*models.HeroBanner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.HeroBanner, error)
	ListActive(ctx context.Context) ([]models.HeroBanner, error)
	ListAll(ctx context.Context) ([]models.HeroBanner, error)
	Save(ctx context.Context, banner *models.HeroBanner) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a banner repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, banner *models.HeroBanner) (*models.HeroBanner, error) {
	if banner.ID == uuid.Nil {
		banner.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.HeroBanner, error) {
	var banner models.HeroBanner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&banner).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.HeroBanner, error) {
	var rows []models.HeroBanner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.HeroBanner, error) {
	var rows []models.HeroBanner
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Save(ctx context.Context, banner *models.HeroBanner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.HeroBanner{}).Error
}
