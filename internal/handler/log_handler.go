package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniarchive/archive-api/internal/service"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
	"github.com/uniarchive/archive-api/pkg/response"
)

// LogHandler exposes the activity log endpoints.
type LogHandler struct {
	service *service.AuditService
}

// NewLogHandler creates a new handler.
func NewLogHandler(svc *service.AuditService) *LogHandler {
	return &LogHandler{service: svc}
}

// List godoc
// @Summary Activity log
// @Description Entries within the retention window, newest first
// @Tags Logs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /logs [get]
func (h *LogHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Export godoc
// @Summary Export the activity log
// @Tags Logs
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Success 200 {file} byte
// @Failure 400 {object} response.Envelope
// @Router /logs/export [get]
func (h *LogHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("activity-log-%s", time.Now().UTC().Format("2006-01-02"))

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.service.ExportCSV(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.service.ExportPDF(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
