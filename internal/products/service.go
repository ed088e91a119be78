package products

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// Service exposes catalog reads and admin catalog management.
type Service interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductListDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	LowStock(ctx context.Context) ([]ProductDTO, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	DB     *db.Client
	Repo   Repository
	Logger *logger.Logger
}

type service struct {
	db     *db.Client
	repo   Repository
	logger *logger.Logger
}

// NewService builds the product service.
func NewService(params ServiceParams) Service {
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		logger: params.Logger,
	}
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductListDTO, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toProductDTO(&rows[i]))
	}
	return &ProductListDTO{
		Items:      items,
		Pagination: pagination.PageFor(params, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}
	dto := toProductDTO(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := input.SizesStock.Validate(); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid sizes stock")
	}
	if err := validateDiscountPercent(input.DiscountPercent); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		Category:          strings.TrimSpace(input.Category),
		Price:             input.Price,
		DiscountPercent:   input.DiscountPercent,
		Stock:             input.Stock,
		Images:            input.Images,
		LowStockThreshold: lowStockOrDefault(input.LowStockThresh),
		IsActive:          true,
	}
	if len(input.SizesStock) > 0 {
		product.SizesStock = input.SizesStock.Clone()
		product.Stock = input.SizesStock.Total()
	}
	if input.VideoURL != nil {
		normalized := NormalizeVideoURL(*input.VideoURL)
		product.VideoURL = &normalized
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create product")
	}
	dto := toProductDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.DiscountPercent != nil {
		if err := validateDiscountPercent(input.DiscountPercent); err != nil {
			return nil, err
		}
		product.DiscountPercent = input.DiscountPercent
	}
	if input.LowStockThresh != nil {
		product.LowStockThreshold = *input.LowStockThresh
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.ImagesSet {
		product.Images = input.Images
	}
	if input.VideoURLSet {
		if input.VideoURL == nil {
			product.VideoURL = nil
		} else {
			normalized := NormalizeVideoURL(*input.VideoURL)
			product.VideoURL = &normalized
		}
	}
	if input.SizesStockSet {
		if err := input.SizesStock.Validate(); err != nil {
			return nil, errors.Wrap(errors.CodeValidation, err, "invalid sizes stock")
		}
		product.SizesStock = input.SizesStock.Clone()
		product.Stock = input.SizesStock.Total()
	} else if input.Stock != nil {
		product.Stock = *input.Stock
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update product")
	}
	dto := toProductDTO(product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "product not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete product")
	}
	return nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list categories")
	}
	return categories, nil
}

func (s *service) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	counts, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count categories")
	}
	return counts, nil
}

func (s *service) LowStock(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list low stock products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toProductDTO(&rows[i]))
	}
	return items, nil
}

// NormalizeVideoURL rewrites known YouTube watch, short link and shorts
// URLs to their embeddable form. Anything unrecognized is returned as-is.
func NormalizeVideoURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	switch host {
	case "youtu.be":
		if id := strings.Trim(parsed.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case "youtube.com", "m.youtube.com":
		if strings.HasPrefix(parsed.Path, "/shorts/") {
			if id := strings.Trim(strings.TrimPrefix(parsed.Path, "/shorts/"), "/"); id != "" {
				return "https://www.youtube.com/embed/" + id
			}
		}
		if parsed.Path == "/watch" {
			if id := parsed.Query().Get("v"); id != "" {
				return "https://www.youtube.com/embed/" + id
			}
		}
	}
	return raw
}

func toProductDTO(product *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:                product.ID,
		Name:              product.Name,
		Description:       product.Description,
		Category:          product.Category,
		Price:             product.Price,
		DiscountPercent:   product.DiscountPercent,
		EffectivePrice:    product.EffectiveUnitPrice(),
		Stock:             product.Stock,
		Images:            product.Images,
		VideoURL:          product.VideoURL,
		LowStockThreshold: product.LowStockThreshold,
		IsActive:          product.IsActive,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
	if len(product.SizesStock) > 0 {
		dto.SizesStock = product.SizesStock.Clone()
	}
	return dto
}

var maxDiscountPercent = decimal.NewFromInt(100)

// validateDiscountPercent keeps the discount inside 0..100 so a
// discounted unit price can never go negative.
func validateDiscountPercent(pct *decimal.Decimal) error {
	if pct == nil {
		return nil
	}
	if pct.IsNegative() || pct.GreaterThan(maxDiscountPercent) {
		return errors.New(errors.CodeValidation, "discount percent must be between 0 and 100").
			WithDetails(map[string]string{"discountPercent": "must be between 0 and 100"})
	}
	return nil
}

func lowStockOrDefault(value *int) int {
	if value != nil && *value > 0 {
		return *value
	}
	return 5
}
