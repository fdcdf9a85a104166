package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

type mockUserRepo struct {
	byEmail     *models.User
	byID        *models.User
	listUsers   []models.User
	listTotal   int
	created     *models.User
	createErr   error
	activeState map[string]bool
	lastHash    string
	setErr      error
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return m.listUsers, m.listTotal, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.byID == nil || m.byID.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.byEmail == nil || m.byEmail.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.byEmail, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = user
	return nil
}

func (m *mockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.activeState == nil {
		m.activeState = make(map[string]bool)
	}
	m.activeState[id] = active
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.lastHash = passwordHash
	return nil
}

func newUserService(repo *mockUserRepo, audit *auditRecorder) *UserService {
	return NewUserService(repo, audit, validator.New(), zap.NewNop(), UserServiceConfig{DefaultResetPassword: "password123"})
}

func TestUserServiceCreate(t *testing.T) {
	repo := &mockUserRepo{}
	audit := &auditRecorder{}
	svc := newUserService(repo, audit)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:           "New.Lecturer@Example.com",
		FullName:        "New Lecturer",
		Role:            models.RoleLecturer,
		Password:        "secret1",
		PasswordConfirm: "secret1",
	}, "admin-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "new.lecturer@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
	require.NotNil(t, audit.last())
	assert.Equal(t, models.AuditCreate, audit.last().Action)
}

func TestUserServiceCreatePasswordMismatch(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, &auditRecorder{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "a@example.com", FullName: "A", Role: models.RoleLecturer,
		Password: "secret1", PasswordConfirm: "secret2",
	}, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceCreateShortPassword(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, &auditRecorder{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "a@example.com", FullName: "A", Role: models.RoleLecturer,
		Password: "abc", PasswordConfirm: "abc",
	}, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceCreateConfiguredMinPasswordLength(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, &auditRecorder{}, validator.New(), zap.NewNop(),
		UserServiceConfig{MinPasswordLength: 10})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "a@example.com", FullName: "A", Role: models.RoleLecturer,
		Password: "secret123", PasswordConfirm: "secret123",
	}, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "at least 10 characters")
}

func TestUserServiceCreateRepoFailureLogged(t *testing.T) {
	repoErr := errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := NewUserService(&mockUserRepo{createErr: repoErr}, &auditRecorder{}, validator.New(), zap.New(core),
		UserServiceConfig{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "a@example.com", FullName: "A", Role: models.RoleLecturer,
		Password: "secret1", PasswordConfirm: "secret1",
	}, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "failed to create user", appErrors.FromError(err).Message)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, repoErr.Error(), entries[0].ContextMap()["error"])
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{byEmail: &models.User{ID: "u1", Email: "taken@example.com"}}
	svc := newUserService(repo, &auditRecorder{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "taken@example.com", FullName: "Dup", Role: models.RoleSecretary,
		Password: "secret1", PasswordConfirm: "secret1",
	}, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeactivate(t *testing.T) {
	repo := &mockUserRepo{byID: &models.User{ID: "u2", Email: "target@example.com", FullName: "Target", Active: true}}
	audit := &auditRecorder{}
	svc := newUserService(repo, audit)

	user, err := svc.Deactivate(context.Background(), "u2", "admin-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.False(t, repo.activeState["u2"])
	require.NotNil(t, audit.last())
	assert.Equal(t, models.AuditUpdate, audit.last().Action)
}

func TestUserServiceDeactivateSelf(t *testing.T) {
	repo := &mockUserRepo{byID: &models.User{ID: "admin-1", Active: true}}
	svc := newUserService(repo, &auditRecorder{})

	_, err := svc.Deactivate(context.Background(), "admin-1", "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.activeState)
}

func TestUserServiceActivate(t *testing.T) {
	repo := &mockUserRepo{byID: &models.User{ID: "u2", Email: "target@example.com", Active: false}}
	svc := newUserService(repo, &auditRecorder{})

	user, err := svc.Activate(context.Background(), "u2", "admin-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.True(t, repo.activeState["u2"])
}

func TestUserServiceResetPassword(t *testing.T) {
	repo := &mockUserRepo{byID: &models.User{ID: "u2", Email: "target@example.com", FullName: "Target"}}
	audit := &auditRecorder{}
	svc := newUserService(repo, audit)

	res, err := svc.ResetPassword(context.Background(), "u2", "admin-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "password123", res.DefaultPassword)
	assert.Equal(t, "target@example.com", res.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.lastHash), []byte("password123")))
}

func TestUserServiceGetUnknown(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, &auditRecorder{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
