package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

// auditRecorder captures appended entries and is shared by the service
// tests in this package.
type auditRecorder struct {
	entries []*models.AuditEntry
	err     error
}

func (a *auditRecorder) Append(ctx context.Context, entry *models.AuditEntry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

func (a *auditRecorder) last() *models.AuditEntry {
	if len(a.entries) == 0 {
		return nil
	}
	return a.entries[len(a.entries)-1]
}

type mockAuthUsers struct {
	user           *models.User
	findByEmailErr error
	findByIDErr    error
}

func (m *mockAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.user, nil
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	return m.user, nil
}

func newAuthService(users *mockAuthUsers, audit *auditRecorder) *AuthService {
	return NewAuthService(users, audit, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "archive-api",
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	users := &mockAuthUsers{user: &models.User{
		ID: "u1", Email: "admin@example.com", FullName: "Root Admin",
		PasswordHash: string(hash), Active: true, Role: models.RoleAdmin,
	}}
	audit := &auditRecorder{}
	svc := newAuthService(users, audit)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "Admin@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "admin@example.com", res.User.Email)
	require.NotNil(t, audit.last())
	assert.Equal(t, models.AuditLogin, audit.last().Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	users := &mockAuthUsers{user: &models.User{ID: "u1", Email: "admin@example.com", PasswordHash: string(hash), Active: true}}
	svc := newAuthService(users, &auditRecorder{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	users := &mockAuthUsers{findByEmailErr: sql.ErrNoRows}
	svc := newAuthService(users, &auditRecorder{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	users := &mockAuthUsers{user: &models.User{ID: "u1", Email: "old@example.com", PasswordHash: string(hash), Active: false}}
	audit := &auditRecorder{}
	svc := newAuthService(users, audit)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "old@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
	assert.Empty(t, audit.entries)
}

func TestAuthServiceValidateToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "admin@example.com", Role: models.RoleAdmin, Active: true}
	users := &mockAuthUsers{user: user}
	svc := newAuthService(users, &auditRecorder{})

	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceValidateTokenDeactivatedAccount(t *testing.T) {
	user := &models.User{ID: "u1", Email: "admin@example.com", Role: models.RoleAdmin, Active: true}
	users := &mockAuthUsers{user: user}
	svc := newAuthService(users, &auditRecorder{})

	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	user.Active = false
	_, err = svc.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogout(t *testing.T) {
	audit := &auditRecorder{}
	svc := newAuthService(&mockAuthUsers{}, audit)

	err := svc.Logout(context.Background(), &models.JWTClaims{UserID: "u1", FullName: "Root Admin"}, models.RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	require.NotNil(t, audit.last())
	assert.Equal(t, models.AuditLogout, audit.last().Action)
	assert.Equal(t, "127.0.0.1", audit.last().IPAddress)
}
