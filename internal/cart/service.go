package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/internal/products"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

// Service exposes the per-user shopping cart.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
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

// NewService builds the cart service.
func NewService(params ServiceParams) Service {
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		products: params.Products,
		logger:   params.Logger,
	}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, cart.ID)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, errors.New(errors.CodeValidation, "quantity must be at least 1")
	}
	size := normalizeSize(input.Size)

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.upsertItem(ctx, cart.ID, product, size, input.Quantity); err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, cart.ID)
}

// upsertItem merges the requested quantity onto any existing line for
// the (product, size) pair. A concurrent insert can still race past the
// existence check; the unique index catches it and the merge is retried
// once against the winning row.
func (s *service) upsertItem(ctx context.Context, cartID uuid.UUID, product *models.Product, size *string, quantity int) error {
	existing, err := s.repo.FindItem(ctx, cartID, product.ID, size)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(errors.CodeInternal, err, "failed to load cart item")
	}

	if existing != nil {
		return s.mergeQuantity(ctx, existing, product, size, existing.Quantity+quantity)
	}

	if err := checkAvailability(product, size, quantity); err != nil {
		return err
	}
	item := &models.CartItem{
		CartID:    cartID,
		ProductID: product.ID,
		Size:      size,
		Quantity:  quantity,
	}
	err = s.repo.CreateItem(ctx, item)
	if err == nil {
		return nil
	}
	// Sized rows bounce off uq_cart_items_cart_product_size, sizeless
	// rows off the partial uq_cart_items_cart_product_nosize index.
	if !db.IsUniqueViolation(err, "uq_cart_items_cart_product") {
		return errors.Wrap(errors.CodeInternal, err, "failed to add cart item")
	}

	winner, err := s.repo.FindItem(ctx, cartID, product.ID, size)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to reload cart item")
	}
	return s.mergeQuantity(ctx, winner, product, size, winner.Quantity+quantity)
}

func (s *service) mergeQuantity(ctx context.Context, item *models.CartItem, product *models.Product, size *string, total int) error {
	if err := checkAvailability(product, size, total); err != nil {
		return err
	}
	item.Quantity = total
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to update cart item")
	}
	return nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, errors.New(errors.CodeValidation, "quantity must be at least 1")
	}
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "cart item not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load cart item")
	}
	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}
	if err := checkAvailability(product, item.Size, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update cart item")
	}
	return s.loadDTO(ctx, cart.ID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "cart item not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load cart item")
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to remove cart item")
	}
	return s.loadDTO(ctx, cart.ID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to clear cart")
	}
	return nil
}

// ensureCart finds the user's cart, creating it on first use. Two
// first-touch requests can race on the user_id unique index, in which
// case the loser re-reads the winner's row.
func (s *service) ensureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load cart")
	}
	created, err := s.repo.CreateForUser(ctx, userID)
	if err == nil {
		return created, nil
	}
	if db.IsUniqueViolation(err, "carts_user_id") {
		cart, err = s.repo.FindByUser(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "failed to load cart")
		}
		return cart, nil
	}
	return nil, errors.Wrap(errors.CodeInternal, err, "failed to create cart")
}

func (s *service) loadDTO(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.LoadWithItems(ctx, cartID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load cart")
	}
	return toCartDTO(cart), nil
}

func checkAvailability(product *models.Product, size *string, requested int) error {
	available := product.Stock
	if size != nil && len(product.SizesStock) > 0 {
		qty, _, _ := product.SizesStock.NormalizedGet(*size)
		available = qty
	}
	if requested > available {
		return errors.New(errors.CodeValidation, "insufficient stock").
			WithDetails(fmt.Sprintf("Available: %d", available))
	}
	return nil
}

func normalizeSize(size string) *string {
	size = strings.ToUpper(strings.TrimSpace(size))
	if size == "" {
		return nil
	}
	return &size
}

func toCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:          cart.ID,
		Items:       make([]CartItemDTO, 0, len(cart.Items)),
		TotalAmount: decimal.Zero,
		UpdatedAt:   cart.UpdatedAt,
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Product == nil {
			continue
		}
		unit := item.Product.EffectiveUnitPrice()
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemDTO := CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: line,
		}
		if len(item.Product.Images) > 0 {
			image := item.Product.Images[0]
			itemDTO.Image = &image
		}
		dto.Items = append(dto.Items, itemDTO)
		dto.TotalAmount = dto.TotalAmount.Add(line)
	}
	return dto
}
