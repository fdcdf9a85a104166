package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniarchive/archive-api/internal/models"
	"github.com/uniarchive/archive-api/internal/service"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
	"github.com/uniarchive/archive-api/pkg/response"
)

type loanService interface {
	Borrow(ctx context.Context, recordID string, actor models.JWTClaims, meta models.RequestMeta) (*models.Loan, error)
	Return(ctx context.Context, loanID string, actor models.JWTClaims, meta models.RequestMeta) (*models.Loan, error)
	Overview(ctx context.Context, actor models.JWTClaims) (*service.LoanOverview, error)
}

// LoanHandler exposes the borrow/return endpoints.
type LoanHandler struct {
	service loanService
}

// NewLoanHandler creates a new handler.
func NewLoanHandler(svc loanService) *LoanHandler {
	return &LoanHandler{service: svc}
}

// Overview godoc
// @Summary Borrow-return overview
// @Description Available records plus open loans, scoped to the caller's role
// @Tags Loans
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /loans [get]
func (h *LoanHandler) Overview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Borrow godoc
// @Summary Borrow a record
// @Tags Loans
// @Produce json
// @Param id path string true "Record ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /records/{id}/borrow [post]
func (h *LoanHandler) Borrow(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	loan, err := h.service.Borrow(c.Request.Context(), c.Param("id"), *claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, loan)
}

// Return godoc
// @Summary Return a borrowed record
// @Tags Loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /loans/{id}/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	loan, err := h.service.Return(c.Request.Context(), c.Param("id"), *claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loan, nil)
}
