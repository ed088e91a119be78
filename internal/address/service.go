package address

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

// AddressDTO is the public saved-address shape.
type AddressDTO struct {
	ID            uuid.UUID `json:"id"`
	Label         *string   `json:"label,omitempty"`
	RecipientName string    `json:"recipientName"`
	Phone         string    `json:"phone"`
	Line1         string    `json:"line1"`
	Line2         *string   `json:"line2,omitempty"`
	City          string    `json:"city"`
	PostalCode    *string   `json:"postalCode,omitempty"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UpsertInput carries create and update requests.
type UpsertInput struct {
	Label         *string
	RecipientName string
	Phone         string
	Line1         string
	Line2         *string
	City          string
	PostalCode    *string
	IsDefault     bool
}

// Service exposes per-user address book management.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input UpsertInput) (*AddressDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpsertInput) (*AddressDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error)
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

// NewService builds the address service.
func NewService(params ServiceParams) Service {
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		logger: params.Logger,
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list addresses")
	}
	items := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toAddressDTO(&rows[i]))
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input UpsertInput) (*AddressDTO, error) {
	address := &models.Address{
		UserID:        userID,
		Label:         input.Label,
		RecipientName: input.RecipientName,
		Phone:         input.Phone,
		Line1:         input.Line1,
		Line2:         input.Line2,
		City:          input.City,
		PostalCode:    input.PostalCode,
		IsDefault:     input.IsDefault,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		_, err := repo.Create(ctx, address)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create address")
	}
	dto := toAddressDTO(address)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpsertInput) (*AddressDTO, error) {
	address, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	address.Label = input.Label
	address.RecipientName = input.RecipientName
	address.Phone = input.Phone
	address.Line1 = input.Line1
	address.Line2 = input.Line2
	address.City = input.City
	address.PostalCode = input.PostalCode

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		address.IsDefault = input.IsDefault
		return repo.Save(ctx, address)
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update address")
	}
	dto := toAddressDTO(address)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	address, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, address.ID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete address")
	}
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error) {
	address, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		address.IsDefault = true
		return repo.Save(ctx, address)
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to set default address")
	}
	dto := toAddressDTO(address)
	return &dto, nil
}

func (s *service) loadOwned(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	address, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "address not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load address")
	}
	return address, nil
}

func toAddressDTO(address *models.Address) AddressDTO {
	return AddressDTO{
		ID:            address.ID,
		Label:         address.Label,
		RecipientName: address.RecipientName,
		Phone:         address.Phone,
		Line1:         address.Line1,
		Line2:         address.Line2,
		City:          address.City,
		PostalCode:    address.PostalCode,
		IsDefault:     address.IsDefault,
		CreatedAt:     address.CreatedAt,
	}
}
