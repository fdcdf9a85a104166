package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

// CreateUserRequest represents payload for creating accounts.
type CreateUserRequest struct {
	Email           string          `json:"email" validate:"required,email"`
	FullName        string          `json:"full_name" validate:"required"`
	Role            models.UserRole `json:"role" validate:"required,oneof=ADMIN SECRETARY LECTURER"`
	Password        string          `json:"password" validate:"required"`
	PasswordConfirm string          `json:"password_confirm" validate:"required"`
}

// ResetPasswordResult surfaces the well-known default so the admin can pass
// it on out-of-band.
type ResetPasswordResult struct {
	Email           string `json:"email"`
	DefaultPassword string `json:"default_password"`
}

// UserServiceConfig holds account policy knobs.
type UserServiceConfig struct {
	DefaultResetPassword string
	MinPasswordLength    int
}

// UserService handles account management workflows. All mutations here are
// admin-gated at the route level.
type UserService struct {
	repo      userRepository
	audit     auditAppender
	validator *validator.Validate
	logger    *zap.Logger
	config    UserServiceConfig
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, audit auditAppender, validate *validator.Validate, logger *zap.Logger, config UserServiceConfig) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DefaultResetPassword == "" {
		config.DefaultResetPassword = "password123"
	}
	if config.MinPasswordLength <= 0 {
		config.MinPasswordLength = 6
	}
	return &UserService{repo: repo, audit: audit, validator: validate, logger: logger, config: config}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return users, pagination, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create adds a new account. The plaintext password is hashed immediately
// and never stored.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actorID string, meta models.RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}

	if len(req.Password) < s.config.MinPasswordLength {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("password must be at least %d characters", s.config.MinPasswordLength))
	}

	if req.Password != req.PasswordConfirm {
		return nil, appErrors.Clone(appErrors.ErrValidation, "passwords do not match")
	}

	email := strings.ToLower(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("user with email %s already exists", email))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
		Staff:        req.Role == models.RoleAdmin,
		PasswordHash: string(passwordHash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.String("email", user.Email), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.appendAudit(ctx, actorID, models.AuditCreate, "User",
		fmt.Sprintf("Created new user: %s (%s) - %s", user.FullName, user.Email, user.Role), meta)

	return user, nil
}

// Deactivate marks the account inactive. Deactivating your own account is
// always denied.
func (s *UserService) Deactivate(ctx context.Context, targetID, actorID string, meta models.RequestMeta) (*models.User, error) {
	if targetID == actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you cannot deactivate your own account")
	}

	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, targetID, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}
	user.Active = false

	s.appendAudit(ctx, actorID, models.AuditUpdate, "User",
		fmt.Sprintf("Deactivated user: %s (%s)", user.FullName, user.Email), meta)

	return user, nil
}

// Activate marks the account active again.
func (s *UserService) Activate(ctx context.Context, targetID, actorID string, meta models.RequestMeta) (*models.User, error) {
	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, targetID, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate user")
	}
	user.Active = true

	s.appendAudit(ctx, actorID, models.AuditUpdate, "User",
		fmt.Sprintf("Activated user: %s (%s)", user.FullName, user.Email), meta)

	return user, nil
}

// ResetPassword resets the target account to the configured default
// password and returns it so the admin can communicate it out-of-band.
func (s *UserService) ResetPassword(ctx context.Context, targetID, actorID string, meta models.RequestMeta) (*ResetPasswordResult, error) {
	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.config.DefaultResetPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, targetID, string(hash), time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset password")
	}

	s.appendAudit(ctx, actorID, models.AuditUpdate, "User",
		fmt.Sprintf("Reset password for user: %s (%s)", user.FullName, user.Email), meta)

	return &ResetPasswordResult{Email: user.Email, DefaultPassword: s.config.DefaultResetPassword}, nil
}

func (s *UserService) appendAudit(ctx context.Context, actorID string, action models.AuditAction, entity, details string, meta models.RequestMeta) {
	if err := s.audit.Append(ctx, &models.AuditEntry{
		ActorID:   &actorID,
		Action:    action,
		Entity:    entity,
		Details:   details,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record user audit entry", zap.Error(err))
	}
}
