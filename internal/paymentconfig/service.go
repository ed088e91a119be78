package paymentconfig

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

// visiblePrefix is how many leading digits stay readable in the public
// masked view.
const visiblePrefix = 3

// ConfigDTO is the admin view with full wallet numbers.
type ConfigDTO struct {
	BkashNumber  *string   `json:"bkashNumber,omitempty"`
	NagadNumber  *string   `json:"nagadNumber,omitempty"`
	RocketNumber *string   `json:"rocketNumber,omitempty"`
	Instructions *string   `json:"instructions,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicConfigDTO is the storefront view. Wallet numbers are masked
// until checkout instructions reveal them through support channels.
type PublicConfigDTO struct {
	BkashNumber  *string `json:"bkashNumber,omitempty"`
	NagadNumber  *string `json:"nagadNumber,omitempty"`
	RocketNumber *string `json:"rocketNumber,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// UpdateInput carries the admin upsert. Nil pointers leave the stored
// value untouched.
type UpdateInput struct {
	BkashNumber  *string
	NagadNumber  *string
	RocketNumber *string
	Instructions *string
}

// Service exposes the wallet payment configuration.
type Service interface {
	Public(ctx context.Context) (*PublicConfigDTO, error)
	AdminGet(ctx context.Context) (*ConfigDTO, error)
	AdminUpdate(ctx context.Context, input UpdateInput) (*ConfigDTO, error)
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

// NewService builds the payment config service.
func NewService(params ServiceParams) Service {
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		logger: params.Logger,
	}
}

func (s *service) Public(ctx context.Context) (*PublicConfigDTO, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PublicConfigDTO{}, nil
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load payment config")
	}
	return &PublicConfigDTO{
		BkashNumber:  maskNumber(cfg.BkashNumber),
		NagadNumber:  maskNumber(cfg.NagadNumber),
		RocketNumber: maskNumber(cfg.RocketNumber),
		Instructions: cfg.Instructions,
	}, nil
}

// AdminGet creates the singleton row on first read.
func (s *service) AdminGet(ctx context.Context) (*ConfigDTO, error) {
	cfg, err := s.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return toConfigDTO(cfg), nil
}

func (s *service) AdminUpdate(ctx context.Context, input UpdateInput) (*ConfigDTO, error) {
	cfg, err := s.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if input.BkashNumber != nil {
		cfg.BkashNumber = emptyToNil(input.BkashNumber)
	}
	if input.NagadNumber != nil {
		cfg.NagadNumber = emptyToNil(input.NagadNumber)
	}
	if input.RocketNumber != nil {
		cfg.RocketNumber = emptyToNil(input.RocketNumber)
	}
	if input.Instructions != nil {
		cfg.Instructions = emptyToNil(input.Instructions)
	}

	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update payment config")
	}
	return toConfigDTO(cfg), nil
}

func (s *service) getOrCreate(ctx context.Context) (*models.PaymentConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load payment config")
	}
	created, err := s.repo.Create(ctx, &models.PaymentConfig{})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create payment config")
	}
	return created, nil
}

func toConfigDTO(cfg *models.PaymentConfig) *ConfigDTO {
	return &ConfigDTO{
		BkashNumber:  cfg.BkashNumber,
		NagadNumber:  cfg.NagadNumber,
		RocketNumber: cfg.RocketNumber,
		Instructions: cfg.Instructions,
		UpdatedAt:    cfg.UpdatedAt,
	}
}

// maskNumber keeps the operator prefix and hides the rest, so
// "01712345678" renders as "017xxxxxxxx".
func maskNumber(number *string) *string {
	if number == nil {
		return nil
	}
	digits := strings.TrimSpace(*number)
	if digits == "" {
		return nil
	}
	if len(digits) <= visiblePrefix {
		masked := strings.Repeat("x", len(digits))
		return &masked
	}
	masked := digits[:visiblePrefix] + strings.Repeat("x", len(digits)-visiblePrefix)
	return &masked
}

func emptyToNil(value *string) *string {
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
