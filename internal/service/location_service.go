package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

type locationRepository interface {
	Create(ctx context.Context, loc *models.Location) error
	Update(ctx context.Context, loc *models.Location) error
	FindByID(ctx context.Context, id string) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	CountRecords(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

// LocationRequest carries the three physical coordinates. The full code is
// always derived server-side.
type LocationRequest struct {
	ShelfNumber   int    `json:"shelf_number" validate:"required,min=1"`
	BayCode       string `json:"bay_code" validate:"required,alpha"`
	SectionNumber int    `json:"section_number" validate:"required,min=1"`
}

// LocationService manages the archive room layout.
type LocationService struct {
	repo      locationRepository
	audit     auditAppender
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLocationService creates an instance of LocationService.
func NewLocationService(repo locationRepository, audit auditAppender, validate *validator.Validate, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LocationService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns all locations.
func (s *LocationService) List(ctx context.Context) ([]models.Location, error) {
	locations, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list locations")
	}
	return locations, nil
}

// Get returns a location by ID.
func (s *LocationService) Get(ctx context.Context, id string) (*models.Location, error) {
	loc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load location")
	}
	return loc, nil
}

// Create adds a new shelf slot.
func (s *LocationService) Create(ctx context.Context, req LocationRequest, actorID string, meta models.RequestMeta) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}

	loc := &models.Location{
		ID:            uuid.NewString(),
		ShelfNumber:   req.ShelfNumber,
		BayCode:       strings.ToUpper(req.BayCode),
		SectionNumber: req.SectionNumber,
	}

	if err := s.repo.Create(ctx, loc); err != nil {
		s.logger.Error("failed to create location", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create location")
	}

	s.appendAudit(ctx, actorID, models.AuditCreate, "Location",
		fmt.Sprintf("Added new location: %s", loc.FullCode), meta)

	return loc, nil
}

// Update rewrites the coordinates and recomputes the full code.
func (s *LocationService) Update(ctx context.Context, id string, req LocationRequest, actorID string, meta models.RequestMeta) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}

	loc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	loc.ShelfNumber = req.ShelfNumber
	loc.BayCode = strings.ToUpper(req.BayCode)
	loc.SectionNumber = req.SectionNumber

	if err := s.repo.Update(ctx, loc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update location")
	}

	s.appendAudit(ctx, actorID, models.AuditUpdate, "Location",
		fmt.Sprintf("Updated location: %s", loc.FullCode), meta)

	return loc, nil
}

// Delete removes a location that no record references.
func (s *LocationService) Delete(ctx context.Context, id, actorID string, meta models.RequestMeta) error {
	loc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountRecords(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count records at location")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("location %s still holds %d records", loc.FullCode, count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete location")
	}

	s.appendAudit(ctx, actorID, models.AuditDelete, "Location",
		fmt.Sprintf("Deleted location: %s", loc.FullCode), meta)

	return nil
}

func (s *LocationService) appendAudit(ctx context.Context, actorID string, action models.AuditAction, entity, details string, meta models.RequestMeta) {
	if err := s.audit.Append(ctx, &models.AuditEntry{
		ActorID:   &actorID,
		Action:    action,
		Entity:    entity,
		Details:   details,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record location audit entry", zap.Error(err))
	}
}
