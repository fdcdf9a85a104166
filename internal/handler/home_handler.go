package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniarchive/archive-api/internal/service"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
	"github.com/uniarchive/archive-api/pkg/response"
)

// HomeHandler serves the role-scoped dashboard.
type HomeHandler struct {
	service *service.DashboardService
}

// NewHomeHandler creates a new handler.
func NewHomeHandler(svc *service.DashboardService) *HomeHandler {
	return &HomeHandler{service: svc}
}

// Summary godoc
// @Summary Role-scoped home dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /home [get]
func (h *HomeHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
