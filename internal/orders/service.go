package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/internal/cart"
	"github.com/kidoralabs/kidora-backend/internal/products"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/mailer"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// UserDirectory resolves order owners for notification emails.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes checkout and order lifecycle management.
type Service interface {
	Place(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderListDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string) (*OrderDTO, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	DB       *db.Client
	Repo     Repository
	Products products.Repository
	Cart     cart.Repository
	Users    UserDirectory
	Mailer   mailer.Mailer
	Logger   *logger.Logger

	// SchemaRepair reruns the legacy schema patches. Invoked once when
	// a status write trips an outdated check constraint.
	SchemaRepair func(ctx context.Context) error
}

type service struct {
	db           *db.Client
	repo         Repository
	products     products.Repository
	cart         cart.Repository
	users        UserDirectory
	mailer       mailer.Mailer
	logger       *logger.Logger
	schemaRepair func(ctx context.Context) error
}

// NewService builds the order service.
func NewService(params ServiceParams) Service {
	return &service{
		db:           params.DB,
		repo:         params.Repo,
		products:     params.Products,
		cart:         params.Cart,
		users:        params.Users,
		mailer:       params.Mailer,
		logger:       params.Logger,
		schemaRepair: params.SchemaRepair,
	}
}

// Place validates stock, freezes prices and writes the order and stock
// decrements in one transaction. Product rows are locked so concurrent
// checkouts cannot oversell a size bucket.
func (s *service) Place(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, errors.New(errors.CodeValidation, "item quantity must be at least 1")
		}
	}

	var placed *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			product, err := productRepo.FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.New(errors.CodeNotFound, "product not found").
						WithDetails(line.ProductID.String())
				}
				return errors.Wrap(errors.CodeInternal, err, "failed to load product")
			}

			size := normalizeSize(line.Size)
			if err := reserveStock(product, size, line.Quantity); err != nil {
				return err
			}
			if err := productRepo.Save(ctx, product); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to update stock")
			}

			unit := product.EffectiveUnitPrice()
			total = total.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Size:        size,
				Quantity:    line.Quantity,
				UnitPrice:   unit,
			})
		}

		order := &models.Order{
			UserID:              userID,
			CustomerName:        input.CustomerName,
			Phone:               input.Phone,
			Address:             input.Address,
			City:                input.City,
			State:               input.State,
			PostalCode:          input.PostalCode,
			Country:             input.Country,
			Note:                input.Note,
			TotalAmount:         total.Round(2),
			Status:              enums.OrderStatusPending,
			PaymentStatus:       enums.PaymentStatusPending,
			PaymentMethod:       input.PaymentMethod,
			PaymentProvider:     input.PaymentProvider,
			PaymentSenderNumber: input.PaymentSenderNumber,
			TransactionID:       input.TransactionID,
			Items:               orderItems,
		}
		created, err := repo.Create(ctx, order)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to create order")
		}

		// A successful checkout empties the cart in the same transaction.
		if s.cart != nil {
			cartRepo := s.cart.WithTx(tx)
			userCart, err := cartRepo.FindByUser(ctx, userID)
			if err == nil {
				if err := cartRepo.DeleteItems(ctx, userCart.ID); err != nil {
					return errors.Wrap(errors.CodeInternal, err, "failed to clear cart")
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(errors.CodeInternal, err, "failed to load cart")
			}
		}

		placed = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(placed.UserID, mailer.OrderConfirmation(placed.ID, placed.TotalAmount, len(placed.Items)))

	dto := ToOrderDTO(placed)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	dto := ToOrderDTO(order)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListDTO, error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list orders")
	}
	return toOrderListDTO(rows, params, total), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderListDTO, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list orders")
	}
	return toOrderListDTO(rows, params, total), nil
}

// UpdateStatus moves the order through its lifecycle. Owners may only
// inspect; the transition itself is restricted at the route layer to
// admins except for cancellation, which has its own entry point.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string) (*OrderDTO, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "invalid order status").
			WithDetails(fmt.Sprintf("accepted: %v", enums.OrderStatuses()))
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}

	previous := order.Status
	order.Status = parsed
	if err := s.saveWithSchemaRepair(ctx, order); err != nil {
		return nil, err
	}

	if previous != parsed {
		s.notifyOwner(order.UserID, mailer.OrderStatusUpdate(order.ID, parsed.String()))
	}
	dto := ToOrderDTO(order)
	return &dto, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error) {
	parsed, err := enums.ParsePaymentStatus(status)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "invalid payment status")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.PaymentStatus
	order.PaymentStatus = parsed
	if err := s.saveWithSchemaRepair(ctx, order); err != nil {
		return nil, err
	}

	if previous != parsed {
		s.notifyOwner(order.UserID, mailer.PaymentStatusUpdate(order.ID, parsed.String()))
	}
	dto := ToOrderDTO(order)
	return &dto, nil
}

// Cancel returns each line's quantity to stock and marks the order
// cancelled. Delivered and already cancelled orders are left alone.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	var cancelled *models.Order
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load order")
		}
		if !actor.IsAdmin && order.UserID != actor.UserID {
			return errors.New(errors.CodeNotFound, "order not found")
		}
		switch order.Status {
		case enums.OrderStatusCancelled:
			return errors.New(errors.CodeStateConflict, "order is already cancelled")
		case enums.OrderStatusDelivered:
			return errors.New(errors.CodeStateConflict, "delivered orders cannot be cancelled")
		}

		for i := range order.Items {
			item := &order.Items[i]
			product, err := productRepo.FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Product was deleted after purchase; nothing to restock.
					continue
				}
				return errors.Wrap(errors.CodeInternal, err, "failed to load product")
			}
			restoreStock(product, item.Size, item.Quantity)
			if err := productRepo.Save(ctx, product); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to restore stock")
			}
		}

		order.Status = enums.OrderStatusCancelled
		if err := repo.Save(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to cancel order")
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(cancelled.UserID, mailer.OrderStatusUpdate(cancelled.ID, enums.OrderStatusCancelled.String()))

	dto := ToOrderDTO(cancelled)
	return &dto, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load order")
	}
	return order, nil
}

// saveWithSchemaRepair retries once after rerunning the legacy patches.
// Databases migrated before the uppercase status values were introduced
// still carry a check constraint that rejects them.
func (s *service) saveWithSchemaRepair(ctx context.Context, order *models.Order) error {
	err := s.repo.Save(ctx, order)
	if err == nil {
		return nil
	}
	if s.schemaRepair == nil || !db.IsCheckViolation(err, "") {
		return errors.Wrap(errors.CodeInternal, err, "failed to update order")
	}
	if repairErr := s.schemaRepair(ctx); repairErr != nil {
		return errors.Wrap(errors.CodeInternal, repairErr, "failed to repair order schema")
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to update order")
	}
	return nil
}

// notifyOwner sends asynchronously; a failed email never fails the
// order operation.
func (s *service) notifyOwner(userID uuid.UUID, msg mailer.Message) {
	if s.mailer == nil || s.users == nil {
		return
	}
	go func() {
		ctx := s.logger.WithUserID(context.Background(), userID.String())
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			s.logger.Warn(ctx, "order email skipped, owner lookup failed")
			return
		}
		if err := s.mailer.Send(ctx, user.Email, msg.Subject, msg.Body); err != nil {
			s.logger.Warn(ctx, "order email delivery failed")
		}
	}()
}

// reserveStock takes quantity units out of the product. Whenever the
// size map exists it is the source of truth and the aggregate is
// recomputed from it, never decremented independently.
func reserveStock(product *models.Product, size *string, quantity int) error {
	if len(product.SizesStock) > 0 {
		if size != nil {
			available, storedKey, ok := product.SizesStock.NormalizedGet(*size)
			if !ok || available < quantity {
				return errors.New(errors.CodeValidation, fmt.Sprintf("insufficient stock for %s", product.Name)).
					WithDetails(fmt.Sprintf("Available: %d", available))
			}
			sizes := product.SizesStock.Clone()
			sizes[storedKey] = available - quantity
			product.SizesStock = sizes
		} else if product.SizesStock.Total() < quantity {
			return errors.New(errors.CodeValidation, fmt.Sprintf("insufficient stock for %s", product.Name)).
				WithDetails(fmt.Sprintf("Available: %d", product.SizesStock.Total()))
		}
		product.Stock = product.SizesStock.Total()
		return nil
	}
	if product.Stock < quantity {
		return errors.New(errors.CodeValidation, fmt.Sprintf("insufficient stock for %s", product.Name)).
			WithDetails(fmt.Sprintf("Available: %d", product.Stock))
	}
	product.Stock -= quantity
	return nil
}

func restoreStock(product *models.Product, size *string, quantity int) {
	if len(product.SizesStock) > 0 {
		if size != nil {
			sizes := product.SizesStock.Clone()
			if _, storedKey, ok := sizes.NormalizedGet(*size); ok {
				sizes[storedKey] += quantity
			} else {
				sizes[strings.ToUpper(strings.TrimSpace(*size))] = quantity
			}
			product.SizesStock = sizes
		}
		product.Stock = product.SizesStock.Total()
		return
	}
	product.Stock += quantity
}

func normalizeSize(size string) *string {
	size = strings.ToUpper(strings.TrimSpace(size))
	if size == "" {
		return nil
	}
	return &size
}

func ToOrderDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:                  order.ID,
		UserID:              order.UserID,
		CustomerName:        order.CustomerName,
		Phone:               order.Phone,
		Address:             order.Address,
		City:                order.City,
		State:               order.State,
		PostalCode:          order.PostalCode,
		Country:             order.Country,
		Note:                order.Note,
		TotalAmount:         order.TotalAmount,
		Status:              order.Status,
		PaymentStatus:       order.PaymentStatus,
		PaymentMethod:       order.PaymentMethod,
		PaymentProvider:     order.PaymentProvider,
		PaymentSenderNumber: order.PaymentSenderNumber,
		TransactionID:       order.TransactionID,
		Items:               make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
	for i := range order.Items {
		item := &order.Items[i]
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return dto
}

func toOrderListDTO(rows []models.Order, params pagination.Params, total int64) *OrderListDTO {
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, ToOrderDTO(&rows[i]))
	}
	return &OrderListDTO{
		Items:      items,
		Pagination: pagination.PageFor(params, total),
	}
}
