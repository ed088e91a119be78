package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// partialStems are category terms matched by prefix so "kid" finds
// "kids" without "men" finding "women".
var partialStems = map[string]struct{}{
	"kid":   {},
	"girl":  {},
	"boy":   {},
	"child": {},
}

// Repository defines product persistence used by services.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate locks the product row for the remainder of the
// transaction. Must be called inside WithTx. The sqlite dialect is a
// single writer and rejects FOR UPDATE, so the clause is skipped there.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := query.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	query = applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	cats := make([]string, 0, len(filters.Categories))
	for _, c := range filters.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) > 0 {
		conditions := query.Session(&gorm.Session{NewDB: true})
		for _, c := range cats {
			if _, ok := partialStems[c]; ok {
				conditions = conditions.
					Or("LOWER(category) = ?", c).
					Or("LOWER(category) = ?", c+"s").
					Or("category ILIKE ?", c+"%")
			} else {
				conditions = conditions.Or("LOWER(category) = ?", c)
			}
		}
		query = query.Where(conditions)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	return query
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	var rows []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("LOWER(category)").
		Where("category IS NOT NULL").
		Order("LOWER(category) ASC").
		Pluck("LOWER(category)", &rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("LOWER(category) AS category, COUNT(*) AS count").
		Where("category IS NOT NULL").
		Group("LOWER(category)").
		Order("LOWER(category) ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("stock <= low_stock_threshold").
		Order("stock ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}
