package banners

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

// BannerDTO is the public hero banner shape.
type BannerDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Subtitle  *string   `json:"subtitle,omitempty"`
	ImageURL  string    `json:"imageUrl"`
	LinkURL   *string   `json:"linkUrl,omitempty"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateInput carries a new banner.
type CreateInput struct {
	Title     string
	Subtitle  *string
	ImageURL  string
	LinkURL   *string
	SortOrder int
	IsActive  *bool
}

// UpdateInput mirrors CreateInput; nil pointers leave the stored value
// untouched.
type UpdateInput struct {
	Title     *string
	Subtitle  *string
	ImageURL  *string
	LinkURL   *string
	SortOrder *int
	IsActive  *bool
}

// Service exposes storefront carousel management.
type Service interface {
	ListActive(ctx context.Context) ([]BannerDTO, error)
	ListAll(ctx context.Context) ([]BannerDTO, error)
	Create(ctx context.Context, input CreateInput) (*BannerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BannerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
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

// NewService builds the banner service.
func NewService(params ServiceParams) Service {
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		logger: params.Logger,
	}
}

func (s *service) ListActive(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list banners")
	}
	return toBannerDTOs(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list banners")
	}
	return toBannerDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BannerDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.New(errors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, errors.New(errors.CodeValidation, "image url is required")
	}
	banner := &models.HeroBanner{
		Title:     title,
		Subtitle:  input.Subtitle,
		ImageURL:  input.ImageURL,
		LinkURL:   input.LinkURL,
		SortOrder: input.SortOrder,
		IsActive:  true,
	}
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}
	created, err := s.repo.Create(ctx, banner)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create banner")
	}
	dto := toBannerDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BannerDTO, error) {
	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "banner not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load banner")
	}

	if input.Title != nil {
		banner.Title = strings.TrimSpace(*input.Title)
	}
	if input.Subtitle != nil {
		banner.Subtitle = input.Subtitle
	}
	if input.ImageURL != nil {
		banner.ImageURL = *input.ImageURL
	}
	if input.LinkURL != nil {
		banner.LinkURL = input.LinkURL
	}
	if input.SortOrder != nil {
		banner.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, banner); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update banner")
	}
	dto := toBannerDTO(banner)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "banner not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load banner")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete banner")
	}
	return nil
}

func toBannerDTO(banner *models.HeroBanner) BannerDTO {
	return BannerDTO{
		ID:        banner.ID,
		Title:     banner.Title,
		Subtitle:  banner.Subtitle,
		ImageURL:  banner.ImageURL,
		LinkURL:   banner.LinkURL,
		SortOrder: banner.SortOrder,
		IsActive:  banner.IsActive,
		CreatedAt: banner.CreatedAt,
	}
}

func toBannerDTOs(rows []models.HeroBanner) []BannerDTO {
	items := make([]BannerDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toBannerDTO(&rows[i]))
	}
	return items
}
