package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/internal/users"
	pkgauth "github.com/kidoralabs/kidora-backend/pkg/auth"
	"github.com/kidoralabs/kidora-backend/pkg/config"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/db/models"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/mailer"
	"github.com/kidoralabs/kidora-backend/pkg/security"
)

const resetCodeDigits = 6

// Service exposes account lifecycle and credential operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*users.UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	DB     *db.Client
	Repo   Repository
	Users  users.Repository
	Config *config.Config
	Mailer mailer.Mailer
	Logger *logger.Logger

	// Now is swapped in tests to pin token and code expiries.
	Now func() time.Time
}

type service struct {
	db     *db.Client
	repo   Repository
	users  users.Repository
	cfg    *config.Config
	mailer mailer.Mailer
	logger *logger.Logger
	now    func() time.Time
}

// NewService builds the auth service.
func NewService(params ServiceParams) Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		users:  params.Users,
		cfg:    params.Config,
		mailer: params.Mailer,
		logger: params.Logger,
		now:    now,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, errors.New(errors.CodeValidation, "email is required")
	}
	if len(input.Password) < s.cfg.Password.MinLength {
		return nil, errors.New(errors.CodeValidation, "password is too short")
	}

	hash, err := security.HashPassword(input.Password, s.cfg.Password)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to hash password")
	}

	role := enums.RoleUser
	if pkgauth.IsAdminEmail(s.cfg.Admin, email) {
		role = enums.RoleAdmin
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        input.Phone,
		Role:         role,
		IsActive:     true,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, errors.New(errors.CodeConflict, "email is already registered")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create user")
	}

	s.sendAsync(created.Email, mailer.WelcomeEmail(created.FullName))

	return s.tokenResponse(created)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeUnauthorized, "invalid email or password")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, errors.New(errors.CodeUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.New(errors.CodeForbidden, "account is deactivated")
	}

	loginAt := s.now().UTC()
	user.LastLoginAt = &loginAt
	if err := s.users.Save(ctx, user); err != nil {
		// The login itself succeeded; a failed timestamp write is logged
		// and otherwise ignored.
		s.logger.Warn(s.logger.WithUserID(ctx, user.ID.String()), "failed to record last login")
	}

	return s.tokenResponse(user)
}

// Logout records the token's jti so it can never authenticate again.
// Logging out an already revoked token reports success.
func (s *service) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	err := s.repo.RevokeToken(ctx, jti, expiresAt)
	if err != nil && !db.IsUniqueViolation(err, "") {
		return errors.Wrap(errors.CodeInternal, err, "failed to revoke token")
	}
	return nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load user")
	}
	dto := users.ToUserDTO(user)
	return &dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load user")
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "full name cannot be empty")
		}
		user.FullName = name
	}
	if input.PhoneSet {
		user.Phone = input.Phone
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update profile")
	}
	dto := users.ToUserDTO(user)
	return &dto, nil
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if len(input.NewPassword) < s.cfg.Password.MinLength {
		return errors.New(errors.CodeValidation, "password is too short")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "user not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load user")
	}

	ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		return errors.New(errors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(input.NewPassword, s.cfg.Password)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to hash password")
	}
	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to update password")
	}
	return nil
}

// ForgotPassword always reports success so the endpoint cannot be used
// to probe which emails have accounts.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load user")
	}

	code, err := security.GenerateResetCode(resetCodeDigits)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to generate reset code")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.InvalidateResetCodes(ctx, email); err != nil {
			return err
		}
		return repo.CreateResetCode(ctx, &models.PasswordResetCode{
			Email:     email,
			Code:      code,
			ExpiresAt: s.now().UTC().Add(s.cfg.Password.ResetCodeTTL),
		})
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to store reset code")
	}

	s.sendAsync(email, mailer.PasswordResetCode(code))
	return nil
}

func (s *service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if len(input.NewPassword) < s.cfg.Password.MinLength {
		return errors.New(errors.CodeValidation, "password is too short")
	}
	email := normalizeEmail(input.Email)
	code := strings.TrimSpace(input.Code)

	row, err := s.repo.FindActiveResetCode(ctx, email, code, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeValidation, "invalid or expired reset code")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load reset code")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeValidation, "invalid or expired reset code")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load user")
	}

	hash, err := security.HashPassword(input.NewPassword, s.cfg.Password)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to hash password")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).MarkResetCodeUsed(ctx, row.ID); err != nil {
			return err
		}
		user.PasswordHash = hash
		return s.users.WithTx(tx).Save(ctx, user)
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to reset password")
	}

	s.sendAsync(email, mailer.PasswordResetSuccess())
	return nil
}

func (s *service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	revoked, err := s.repo.IsTokenRevoked(ctx, jti)
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "failed to check token")
	}
	return revoked, nil
}

func (s *service) tokenResponse(user *models.User) (*AuthResponse, error) {
	role := user.Role
	if pkgauth.IsAdminEmail(s.cfg.Admin, user.Email) {
		role = enums.RoleAdmin
	}
	token, err := pkgauth.MintAccessToken(s.cfg.JWT, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to mint token")
	}
	return &AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        users.ToUserDTO(user),
	}, nil
}

// sendAsync delivers mail off the request path; failures are logged and
// never surfaced to the caller.
func (s *service) sendAsync(to string, msg mailer.Message) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if err := s.mailer.Send(ctx, to, msg.Subject, msg.Body); err != nil {
			s.logger.Warn(ctx, "email delivery failed")
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
