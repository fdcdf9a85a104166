package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniarchive/archive-api/internal/middleware"
	"github.com/uniarchive/archive-api/internal/models"
	"github.com/uniarchive/archive-api/internal/service"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

type loanServiceMock struct {
	loan      *models.Loan
	overview  *service.LoanOverview
	err       error
	lastActor models.JWTClaims
}

func (m *loanServiceMock) Borrow(ctx context.Context, recordID string, actor models.JWTClaims, meta models.RequestMeta) (*models.Loan, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return m.loan, nil
}

func (m *loanServiceMock) Return(ctx context.Context, loanID string, actor models.JWTClaims, meta models.RequestMeta) (*models.Loan, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return m.loan, nil
}

func (m *loanServiceMock) Overview(ctx context.Context, actor models.JWTClaims) (*service.LoanOverview, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return m.overview, nil
}

func TestLoanHandlerBorrow(t *testing.T) {
	mockSvc := &loanServiceMock{loan: &models.Loan{ID: "l1", RecordID: "r1", BorrowerID: "lect-1"}}
	handler := NewLoanHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/records/r1/borrow", nil)
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "lect-1", Role: models.RoleLecturer})

	handler.Borrow(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "lect-1", mockSvc.lastActor.UserID)
}

func TestLoanHandlerBorrowConflict(t *testing.T) {
	mockSvc := &loanServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "record is already borrowed")}
	handler := NewLoanHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/records/r1/borrow", nil)
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "lect-1", Role: models.RoleLecturer})

	handler.Borrow(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoanHandlerBorrowWithoutClaims(t *testing.T) {
	handler := NewLoanHandler(&loanServiceMock{})

	c, w := testContext(t, http.MethodPost, "/records/r1/borrow", nil)

	handler.Borrow(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoanHandlerReturn(t *testing.T) {
	mockSvc := &loanServiceMock{loan: &models.Loan{ID: "l1"}}
	handler := NewLoanHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/loans/l1/return", nil)
	c.Params = gin.Params{{Key: "id", Value: "l1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "lect-1", Role: models.RoleLecturer})

	handler.Return(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoanHandlerOverview(t *testing.T) {
	mockSvc := &loanServiceMock{overview: &service.LoanOverview{Available: []models.Record{{ID: "r1"}}}}
	handler := NewLoanHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/loans", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "adm-1", Role: models.RoleAdmin})

	handler.Overview(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleAdmin, mockSvc.lastActor.Role)
}
