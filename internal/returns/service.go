package returns

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/internal/orders"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// ReturnDTO is the public return request shape.
type ReturnDTO struct {
	ID        uuid.UUID          `json:"id"`
	OrderID   uuid.UUID          `json:"orderId"`
	UserID    uuid.UUID          `json:"userId"`
	Reason    string             `json:"reason"`
	Status    enums.ReturnStatus `json:"status"`
	AdminNote *string            `json:"adminNote,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ReturnListDTO pairs a return page with its pagination metadata.
type ReturnListDTO struct {
	Items      []ReturnDTO     `json:"items"`
	Pagination pagination.Page `json:"pagination"`
}

// ReviewInput carries the admin decision on a request.
type ReviewInput struct {
	Status    string
	AdminNote *string
}

// Service exposes the return request workflow.
type Service interface {
	Create(ctx context.Context, userID, orderID uuid.UUID, reason string) (*ReturnDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]ReturnDTO, error)
	List(ctx context.Context, status *enums.ReturnStatus, params pagination.Params) (*ReturnListDTO, error)
	Review(ctx context.Context, id uuid.UUID, input ReviewInput) (*ReturnDTO, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	DB     *db.Client
	Repo   Repository
	Orders orders.Repository
	Logger *logger.Logger
}

type service struct {
	db     *db.Client
	repo   Repository
	orders orders.Repository
	logger *logger.Logger
}

// NewService builds the returns service.
func NewService(params ServiceParams) Service {
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		orders: params.Orders,
		logger: params.Logger,
	}
}

// Create files a return for a delivered order the user owns. One open
// request per order at a time.
func (s *service) Create(ctx context.Context, userID, orderID uuid.UUID, reason string) (*ReturnDTO, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.New(errors.CodeValidation, "reason is required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load order")
	}
	if order.UserID != userID {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, errors.New(errors.CodeStateConflict, "only delivered orders can be returned")
	}

	if _, err := s.repo.FindOpenByOrder(ctx, orderID); err == nil {
		return nil, errors.New(errors.CodeConflict, "a return request for this order is already open")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to check return requests")
	}

	request := &models.ReturnRequest{
		OrderID: orderID,
		UserID:  userID,
		Reason:  reason,
		Status:  enums.ReturnStatusPending,
	}
	created, err := s.repo.Create(ctx, request)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create return request")
	}
	dto := toReturnDTO(created)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]ReturnDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list return requests")
	}
	items := make([]ReturnDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toReturnDTO(&rows[i]))
	}
	return items, nil
}

func (s *service) List(ctx context.Context, status *enums.ReturnStatus, params pagination.Params) (*ReturnListDTO, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list return requests")
	}
	items := make([]ReturnDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toReturnDTO(&rows[i]))
	}
	return &ReturnListDTO{
		Items:      items,
		Pagination: pagination.PageFor(params, total),
	}, nil
}

func (s *service) Review(ctx context.Context, id uuid.UUID, input ReviewInput) (*ReturnDTO, error) {
	parsed, err := enums.ParseReturnStatus(input.Status)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "invalid return status")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "return request not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load return request")
	}

	request.Status = parsed
	if input.AdminNote != nil {
		request.AdminNote = input.AdminNote
	}
	if err := s.repo.Save(ctx, request); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update return request")
	}
	dto := toReturnDTO(request)
	return &dto, nil
}

func toReturnDTO(request *models.ReturnRequest) ReturnDTO {
	return ReturnDTO{
		ID:        request.ID,
		OrderID:   request.OrderID,
		UserID:    request.UserID,
		Reason:    request.Reason,
		Status:    request.Status,
		AdminNote: request.AdminNote,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}
