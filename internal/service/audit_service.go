package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
	"github.com/uniarchive/archive-api/pkg/export"
)

type auditRepository interface {
	ListSince(ctx context.Context, since time.Time, limit int) ([]models.AuditEntry, error)
	Recent(ctx context.Context, n int) ([]models.AuditEntry, error)
}

// AuditServiceConfig bounds the activity log views.
type AuditServiceConfig struct {
	RetentionWindow time.Duration
	ExportMaxRows   int
}

// AuditService reads the activity log and renders exports. Writing entries
// happens in the owning services, not here.
type AuditService struct {
	repo    auditRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	archive *ExportArchive
	config  AuditServiceConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuditService creates an instance of AuditService. A nil archive
// disables on-disk export copies.
func NewAuditService(repo auditRepository, archive *ExportArchive, config AuditServiceConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RetentionWindow <= 0 {
		config.RetentionWindow = 30 * 24 * time.Hour
	}
	if config.ExportMaxRows <= 0 {
		config.ExportMaxRows = 10000
	}
	return &AuditService{
		repo:    repo,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		archive: archive,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the activity log within the retention window, newest first.
func (s *AuditService) List(ctx context.Context) ([]models.AuditEntry, error) {
	since := s.now().UTC().Add(-s.config.RetentionWindow)
	entries, err := s.repo.ListSince(ctx, since, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity log")
	}
	return entries, nil
}

// ExportCSV renders the windowed activity log as CSV bytes.
func (s *AuditService) ExportCSV(ctx context.Context) ([]byte, error) {
	dataset, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	s.archive.Store(s.exportFilename("csv"), payload)
	return payload, nil
}

// ExportPDF renders the windowed activity log as PDF bytes.
func (s *AuditService) ExportPDF(ctx context.Context) ([]byte, error) {
	dataset, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(dataset, "Activity Log")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	s.archive.Store(s.exportFilename("pdf"), payload)
	return payload, nil
}

func (s *AuditService) exportFilename(ext string) string {
	return fmt.Sprintf("activity-log-%s.%s", s.now().UTC().Format("20060102-150405"), ext)
}

func (s *AuditService) dataset(ctx context.Context) (export.Dataset, error) {
	since := s.now().UTC().Add(-s.config.RetentionWindow)
	entries, err := s.repo.ListSince(ctx, since, s.config.ExportMaxRows)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity log")
	}

	headers := []string{"Timestamp", "Actor", "Action", "Entity", "Details", "IP Address"}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		actor := "system"
		if entry.ActorID != nil {
			actor = *entry.ActorID
		}
		rows = append(rows, map[string]string{
			"Timestamp":  entry.CreatedAt.Format(time.RFC3339),
			"Actor":      actor,
			"Action":     string(entry.Action),
			"Entity":     entry.Entity,
			"Details":    entry.Details,
			"IP Address": entry.IPAddress,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

// Digest joins the n most recent entry details with a separator, oldest
// last, for compact dashboard display.
func (s *AuditService) Digest(ctx context.Context, n int) (string, error) {
	entries, err := s.repo.Recent(ctx, n)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent activity")
	}
	digest := ""
	for i, entry := range entries {
		if i > 0 {
			digest += " | "
		}
		digest += fmt.Sprintf("%s: %s", entry.Action, entry.Details)
	}
	return digest, nil
}
