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

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

const recordCachePattern = "dashboard:*"

type recordRepository interface {
	Create(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, id string) (*models.Record, error)
	FindByFileCode(ctx context.Context, fileCode string) (*models.Record, error)
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter models.RecordSearch) ([]models.Record, error)
	ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.Record, error)
	ListUploadedSince(ctx context.Context, since time.Time) ([]models.Record, error)
}

type recordLocationFinder interface {
	FindByID(ctx context.Context, id string) (*models.Location, error)
}

type recordLoanChecker interface {
	FindOpenByRecord(ctx context.Context, recordID string) (*models.Loan, error)
}

// CreateRecordRequest carries the full catalog entry. FileCode is assigned
// once here and never changes afterwards.
type CreateRecordRequest struct {
	FileCode      string  `json:"file_code" validate:"required"`
	CourseCode    string  `json:"course_code" validate:"required"`
	CourseName    string  `json:"course_name" validate:"required"`
	LecturerName  string  `json:"lecturer_name" validate:"required"`
	Semester      string  `json:"semester" validate:"required,oneof=Fall Spring Summer"`
	AcademicYear  string  `json:"academic_year" validate:"required"`
	ExamType      *string `json:"exam_type,omitempty"`
	DocumentType  string  `json:"document_type" validate:"required,oneof=Exam 'Internship Report' 'Grad Project'"`
	CloudFileID   *string `json:"cloud_file_id,omitempty"`
	CloudFileLink *string `json:"cloud_file_link,omitempty"`
	DigitalCopy   bool    `json:"has_digital_copy"`
	LocationID    string  `json:"location_id" validate:"required"`
}

// UpdateRecordRequest mirrors the create payload without the file code.
type UpdateRecordRequest struct {
	CourseCode    string  `json:"course_code" validate:"required"`
	CourseName    string  `json:"course_name" validate:"required"`
	LecturerName  string  `json:"lecturer_name" validate:"required"`
	Semester      string  `json:"semester" validate:"required,oneof=Fall Spring Summer"`
	AcademicYear  string  `json:"academic_year" validate:"required"`
	ExamType      *string `json:"exam_type,omitempty"`
	DocumentType  string  `json:"document_type" validate:"required,oneof=Exam 'Internship Report' 'Grad Project'"`
	CloudFileID   *string `json:"cloud_file_id,omitempty"`
	CloudFileLink *string `json:"cloud_file_link,omitempty"`
	DigitalCopy   bool    `json:"has_digital_copy"`
	LocationID    string  `json:"location_id" validate:"required"`
}

// RecordSearchResult distinguishes a browse of the full catalog from an
// actual filtered search.
type RecordSearchResult struct {
	Records  []models.Record `json:"records"`
	Searched bool            `json:"searched"`
	Total    int             `json:"total"`
}

// RecordService manages the document catalog.
type RecordService struct {
	repo      recordRepository
	locations recordLocationFinder
	loans     recordLoanChecker
	audit     auditAppender
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService creates an instance of RecordService.
func NewRecordService(repo recordRepository, locations recordLocationFinder, loans recordLoanChecker, audit auditAppender, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RecordService{repo: repo, locations: locations, loans: loans, audit: audit, cache: cache, validator: validate, logger: logger}
}

// Get returns a record by ID.
func (s *RecordService) Get(ctx context.Context, id string) (*models.Record, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return record, nil
}

// Search runs the catalog search. An empty filter browses the full catalog
// and is reported as not searched.
func (s *RecordService) Search(ctx context.Context, filter models.RecordSearch) (*RecordSearchResult, error) {
	records, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search records")
	}
	return &RecordSearchResult{Records: records, Searched: !filter.Empty(), Total: len(records)}, nil
}

// ListByStatus returns all records in the given shelf status.
func (s *RecordService) ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.Record, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown record status %q", status))
	}
	records, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}
	return records, nil
}

// ListNewThisMonth returns records uploaded since the start of the current
// calendar month.
func (s *RecordService) ListNewThisMonth(ctx context.Context) ([]models.Record, error) {
	records, err := s.repo.ListUploadedSince(ctx, monthStart(time.Now().UTC()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}
	return records, nil
}

// Create catalogs a new document. New records always start Available.
func (s *RecordService) Create(ctx context.Context, req CreateRecordRequest, actorID string, meta models.RequestMeta) (*models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid record payload")
	}

	examType, err := resolveExamType(models.DocumentType(req.DocumentType), req.ExamType)
	if err != nil {
		return nil, err
	}

	fileCode := strings.TrimSpace(req.FileCode)
	if _, err := s.repo.FindByFileCode(ctx, fileCode); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("record with file code %s already exists", fileCode))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check file code uniqueness")
	}

	if err := s.checkLocation(ctx, req.LocationID); err != nil {
		return nil, err
	}

	record := &models.Record{
		ID:            uuid.NewString(),
		FileCode:      fileCode,
		CourseCode:    req.CourseCode,
		CourseName:    req.CourseName,
		LecturerName:  req.LecturerName,
		Semester:      models.Semester(req.Semester),
		AcademicYear:  req.AcademicYear,
		ExamType:      examType,
		DocumentType:  models.DocumentType(req.DocumentType),
		CloudFileID:   req.CloudFileID,
		CloudFileLink: req.CloudFileLink,
		DigitalCopy:   req.DigitalCopy,
		LocationID:    req.LocationID,
		UploadedBy:    &actorID,
		UploadedAt:    time.Now().UTC(),
		Status:        models.StatusAvailable,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create record", zap.String("file_code", record.FileCode), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create record")
	}

	s.appendAudit(ctx, actorID, models.AuditCreate, "Record",
		fmt.Sprintf("Added new record: %s", record.FileCode), meta)
	s.invalidateCache(ctx)

	return record, nil
}

// Update rewrites the catalog fields of an existing record. The file code
// is fixed at creation and cannot be changed here.
func (s *RecordService) Update(ctx context.Context, id string, req UpdateRecordRequest, actorID string, meta models.RequestMeta) (*models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid record payload")
	}

	examType, err := resolveExamType(models.DocumentType(req.DocumentType), req.ExamType)
	if err != nil {
		return nil, err
	}

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkLocation(ctx, req.LocationID); err != nil {
		return nil, err
	}

	record.CourseCode = req.CourseCode
	record.CourseName = req.CourseName
	record.LecturerName = req.LecturerName
	record.Semester = models.Semester(req.Semester)
	record.AcademicYear = req.AcademicYear
	record.ExamType = examType
	record.DocumentType = models.DocumentType(req.DocumentType)
	record.CloudFileID = req.CloudFileID
	record.CloudFileLink = req.CloudFileLink
	record.DigitalCopy = req.DigitalCopy
	record.LocationID = req.LocationID

	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update record")
	}

	s.appendAudit(ctx, actorID, models.AuditUpdate, "Record",
		fmt.Sprintf("Updated record: %s", record.FileCode), meta)
	s.invalidateCache(ctx)

	return record, nil
}

// Delete removes a record from the catalog. Records with an open loan
// cannot be deleted until they are returned.
func (s *RecordService) Delete(ctx context.Context, id, actorID string, meta models.RequestMeta) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.loans.FindOpenByRecord(ctx, id); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("record %s is currently borrowed and cannot be deleted", record.FileCode))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check open loans")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete record")
	}

	s.appendAudit(ctx, actorID, models.AuditDelete, "Record",
		fmt.Sprintf("Deleted record: %s", record.FileCode), meta)
	s.invalidateCache(ctx)

	return nil
}

func (s *RecordService) checkLocation(ctx context.Context, locationID string) error {
	if _, err := s.locations.FindByID(ctx, locationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "location does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load location")
	}
	return nil
}

// resolveExamType enforces that exam types accompany exam documents only.
func resolveExamType(docType models.DocumentType, examType *string) (*models.ExamType, error) {
	if docType != models.DocExam {
		return nil, nil
	}
	if examType == nil || *examType == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam type is required for exam documents")
	}
	et := models.ExamType(*examType)
	if !et.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown exam type %q", *examType))
	}
	return &et, nil
}

func (s *RecordService) appendAudit(ctx context.Context, actorID string, action models.AuditAction, entity, details string, meta models.RequestMeta) {
	if err := s.audit.Append(ctx, &models.AuditEntry{
		ActorID:   &actorID,
		Action:    action,
		Entity:    entity,
		Details:   details,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record catalog audit entry", zap.Error(err))
	}
}

func (s *RecordService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, recordCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
