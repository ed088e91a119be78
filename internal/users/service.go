package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

// Service exposes admin account management.
type Service interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*UserListDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*UserDTO, error)
	SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error)
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

// NewService builds the user management service.
func NewService(params ServiceParams) Service {
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		logger: params.Logger,
	}
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*UserListDTO, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list users")
	}
	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, ToUserDTO(&rows[i]))
	}
	return &UserListDTO{
		Items:      items,
		Pagination: pagination.PageFor(params, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

func (s *service) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*UserDTO, error) {
	parsed, err := enums.ParseRole(role)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "invalid role")
	}
	if actorID == userID {
		return nil, errors.New(errors.CodeStateConflict, "cannot change your own role")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = parsed
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update role")
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

func (s *service) SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error) {
	if actorID == userID && !active {
		return nil, errors.New(errors.CodeStateConflict, "cannot deactivate your own account")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update account")
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load user")
	}
	return user, nil
}

// ToUserDTO strips credentials from the stored model.
func ToUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Phone:       user.Phone,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
