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

type recordService interface {
	Get(ctx context.Context, id string) (*models.Record, error)
	Search(ctx context.Context, filter models.RecordSearch) (*service.RecordSearchResult, error)
	ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.Record, error)
	ListNewThisMonth(ctx context.Context) ([]models.Record, error)
	Create(ctx context.Context, req service.CreateRecordRequest, actorID string, meta models.RequestMeta) (*models.Record, error)
	Update(ctx context.Context, id string, req service.UpdateRecordRequest, actorID string, meta models.RequestMeta) (*models.Record, error)
	Delete(ctx context.Context, id, actorID string, meta models.RequestMeta) error
}

// RecordHandler exposes the document catalog endpoints.
type RecordHandler struct {
	service recordService
}

// NewRecordHandler creates a new handler.
func NewRecordHandler(svc recordService) *RecordHandler {
	return &RecordHandler{service: svc}
}

// List godoc
// @Summary Browse the full catalog
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /records [get]
func (h *RecordHandler) List(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), models.RecordSearch{})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Records, nil, map[string]interface{}{"total": result.Total})
}

// Search godoc
// @Summary Search the catalog
// @Tags Records
// @Produce json
// @Param course_code query string false "Course code (partial)"
// @Param course_name query string false "Course name (partial)"
// @Param lecturer query string false "Lecturer name (partial)"
// @Param year query string false "Academic year (exact)"
// @Param semester query string false "Semester (exact)"
// @Param doc_type query string false "Document type (exact)"
// @Success 200 {object} response.Envelope
// @Router /records/search [get]
func (h *RecordHandler) Search(c *gin.Context) {
	filter := models.RecordSearch{
		CourseCode:   c.Query("course_code"),
		CourseName:   c.Query("course_name"),
		Lecturer:     c.Query("lecturer"),
		AcademicYear: c.Query("year"),
		Semester:     c.Query("semester"),
		DocumentType: c.Query("doc_type"),
	}

	result, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Records, nil, map[string]interface{}{
		"total":    result.Total,
		"searched": result.Searched,
	})
}

// Filter godoc
// @Summary List records by shelf status
// @Tags Records
// @Produce json
// @Param status path string true "available, borrowed or new-month"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /records/filter/{status} [get]
func (h *RecordHandler) Filter(c *gin.Context) {
	var (
		records []models.Record
		err     error
	)
	switch c.Param("status") {
	case "available":
		records, err = h.service.ListByStatus(c.Request.Context(), models.StatusAvailable)
	case "borrowed":
		records, err = h.service.ListByStatus(c.Request.Context(), models.StatusBorrowed)
	case "new-month":
		records, err = h.service.ListNewThisMonth(c.Request.Context())
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown filter"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Get godoc
// @Summary Fetch one record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Catalog a new document
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body service.CreateRecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /records [post]
func (h *RecordHandler) Create(c *gin.Context) {
	var req service.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.Create(c.Request.Context(), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, record)
}

// Update godoc
// @Summary Update a record
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateRecordRequest true "Record payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
	var req service.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
