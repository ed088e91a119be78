package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/internal/products"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

// Service exposes the per-user wishlist.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error)
	Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	DB       *db.Client
	Repo     Repository
	Products products.Repository
	Logger   *logger.Logger
}

type service struct {
	db       *db.Client
	repo     Repository
	products products.Repository
	logger   *logger.Logger
}

// NewService builds the wishlist service.
func NewService(params ServiceParams) Service {
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		products: params.Products,
		logger:   params.Logger,
	}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error) {
	wishlist, err := s.ensureWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, wishlist, userID)
}

// Toggle adds the product when absent and removes it when present. Two
// concurrent adds both report added; the unique index keeps one row.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}

	wishlist, err := s.ensureWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, wishlist.ID, userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load wishlist item")
	}

	added := false
	if existing != nil {
		if err := s.repo.DeleteItem(ctx, existing.ID); err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "failed to remove wishlist item")
		}
	} else {
		item := &models.WishlistItem{
			WishlistID: wishlist.ID,
			ProductID:  productID,
		}
		err := s.repo.CreateItem(ctx, item)
		if err != nil && !db.IsUniqueViolation(err, "uq_wishlist_items_wishlist_product") {
			return nil, errors.Wrap(errors.CodeInternal, err, "failed to add wishlist item")
		}
		added = true
	}

	dto, err := s.loadDTO(ctx, wishlist, userID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Added: added, Wishlist: dto}, nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error) {
	wishlist, err := s.ensureWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindItem(ctx, wishlist.ID, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "wishlist item not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load wishlist item")
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to remove wishlist item")
	}
	return s.loadDTO(ctx, wishlist, userID)
}

func (s *service) ensureWishlist(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	wishlist, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load wishlist")
	}
	created, err := s.repo.CreateForUser(ctx, userID)
	if err == nil {
		return created, nil
	}
	if db.IsUniqueViolation(err, "wishlists_user_id") {
		wishlist, err = s.repo.FindByUser(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "failed to load wishlist")
		}
		return wishlist, nil
	}
	return nil, errors.Wrap(errors.CodeInternal, err, "failed to create wishlist")
}

func (s *service) loadDTO(ctx context.Context, wishlist *models.Wishlist, userID uuid.UUID) (*WishlistDTO, error) {
	items, err := s.repo.ListItems(ctx, wishlist.ID, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load wishlist items")
	}
	dto := &WishlistDTO{
		ID:    wishlist.ID,
		Items: make([]WishlistItemDTO, 0, len(items)),
	}
	for i := range items {
		item := &items[i]
		if item.Product == nil {
			continue
		}
		itemDTO := WishlistItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Product.Name,
			Price:          item.Product.Price,
			EffectivePrice: item.Product.EffectiveUnitPrice(),
			InStock:        item.Product.Stock > 0,
			AddedAt:        item.CreatedAt,
		}
		if len(item.Product.Images) > 0 {
			image := item.Product.Images[0]
			itemDTO.Image = &image
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	return dto, nil
}
