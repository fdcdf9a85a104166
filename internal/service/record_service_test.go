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

	"github.com/uniarchive/archive-api/internal/models"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

type mockRecordRepo struct {
	byID         *models.Record
	byFileCode   *models.Record
	created      *models.Record
	createErr    error
	updated      *models.Record
	deletedID    string
	searchResult []models.Record
	statusResult []models.Record
}

func (m *mockRecordRepo) Create(ctx context.Context, record *models.Record) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = record
	return nil
}

func (m *mockRecordRepo) FindByID(ctx context.Context, id string) (*models.Record, error) {
	if m.byID == nil || m.byID.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockRecordRepo) FindByFileCode(ctx context.Context, fileCode string) (*models.Record, error) {
	if m.byFileCode == nil || m.byFileCode.FileCode != fileCode {
		return nil, sql.ErrNoRows
	}
	return m.byFileCode, nil
}

func (m *mockRecordRepo) Update(ctx context.Context, record *models.Record) error {
	m.updated = record
	return nil
}

func (m *mockRecordRepo) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func (m *mockRecordRepo) Search(ctx context.Context, filter models.RecordSearch) ([]models.Record, error) {
	return m.searchResult, nil
}

func (m *mockRecordRepo) ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.Record, error) {
	return m.statusResult, nil
}

func (m *mockRecordRepo) ListUploadedSince(ctx context.Context, since time.Time) ([]models.Record, error) {
	return m.statusResult, nil
}

type mockLocationFinder struct {
	location *models.Location
}

func (m *mockLocationFinder) FindByID(ctx context.Context, id string) (*models.Location, error) {
	if m.location == nil || m.location.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.location, nil
}

type mockLoanChecker struct {
	openLoan *models.Loan
}

func (m *mockLoanChecker) FindOpenByRecord(ctx context.Context, recordID string) (*models.Loan, error) {
	if m.openLoan == nil || m.openLoan.RecordID != recordID {
		return nil, sql.ErrNoRows
	}
	return m.openLoan, nil
}

func newRecordService(repo *mockRecordRepo, locations *mockLocationFinder, loans *mockLoanChecker, audit *auditRecorder) *RecordService {
	return NewRecordService(repo, locations, loans, audit, nil, validator.New(), zap.NewNop())
}

func validCreateRequest() CreateRecordRequest {
	exam := "Final"
	return CreateRecordRequest{
		FileCode:     "CS101-F23-001",
		CourseCode:   "CS101",
		CourseName:   "Intro to Computing",
		LecturerName: "Dr. Chen",
		Semester:     "Fall",
		AcademicYear: "2023-2024",
		ExamType:     &exam,
		DocumentType: "Exam",
		LocationID:   "loc-1",
	}
}

func TestRecordServiceCreate(t *testing.T) {
	repo := &mockRecordRepo{}
	locations := &mockLocationFinder{location: &models.Location{ID: "loc-1", FullCode: "5A2"}}
	audit := &auditRecorder{}
	svc := newRecordService(repo, locations, &mockLoanChecker{}, audit)

	record, err := svc.Create(context.Background(), validCreateRequest(), "sec-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, record.Status)
	assert.Equal(t, "CS101-F23-001", record.FileCode)
	require.NotNil(t, record.UploadedBy)
	assert.Equal(t, "sec-1", *record.UploadedBy)
	require.NotNil(t, record.ExamType)
	assert.Equal(t, models.ExamFinal, *record.ExamType)
	require.NotNil(t, audit.last())
	assert.Equal(t, models.AuditCreate, audit.last().Action)
	assert.Contains(t, audit.last().Details, "CS101-F23-001")
}

func TestRecordServiceCreateDuplicateFileCode(t *testing.T) {
	repo := &mockRecordRepo{byFileCode: &models.Record{ID: "r1", FileCode: "CS101-F23-001"}}
	locations := &mockLocationFinder{location: &models.Location{ID: "loc-1"}}
	svc := newRecordService(repo, locations, &mockLoanChecker{}, &auditRecorder{})

	_, err := svc.Create(context.Background(), validCreateRequest(), "sec-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestRecordServiceCreateRepoFailureLogged(t *testing.T) {
	repoErr := errors.New(`pq: duplicate key value violates unique constraint "records_file_code_key"`)
	repo := &mockRecordRepo{createErr: repoErr}
	locations := &mockLocationFinder{location: &models.Location{ID: "loc-1"}}
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := NewRecordService(repo, locations, &mockLoanChecker{}, &auditRecorder{}, nil, validator.New(), zap.New(core))

	_, err := svc.Create(context.Background(), validCreateRequest(), "sec-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "failed to create record", appErrors.FromError(err).Message)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "failed to create record", entries[0].Message)
	assert.Equal(t, repoErr.Error(), entries[0].ContextMap()["error"])
}

func TestRecordServiceCreateExamWithoutExamType(t *testing.T) {
	locations := &mockLocationFinder{location: &models.Location{ID: "loc-1"}}
	svc := newRecordService(&mockRecordRepo{}, locations, &mockLoanChecker{}, &auditRecorder{})

	req := validCreateRequest()
	req.ExamType = nil
	_, err := svc.Create(context.Background(), req, "sec-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceCreateNonExamDropsExamType(t *testing.T) {
	repo := &mockRecordRepo{}
	locations := &mockLocationFinder{location: &models.Location{ID: "loc-1"}}
	svc := newRecordService(repo, locations, &mockLoanChecker{}, &auditRecorder{})

	exam := "Final"
	req := validCreateRequest()
	req.DocumentType = "Grad Project"
	req.ExamType = &exam
	record, err := svc.Create(context.Background(), req, "sec-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Nil(t, record.ExamType)
}

func TestRecordServiceCreateUnknownLocation(t *testing.T) {
	svc := newRecordService(&mockRecordRepo{}, &mockLocationFinder{}, &mockLoanChecker{}, &auditRecorder{})

	_, err := svc.Create(context.Background(), validCreateRequest(), "sec-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceUpdateKeepsFileCode(t *testing.T) {
	repo := &mockRecordRepo{byID: &models.Record{ID: "r1", FileCode: "CS101-F23-001", Status: models.StatusAvailable}}
	locations := &mockLocationFinder{location: &models.Location{ID: "loc-2"}}
	svc := newRecordService(repo, locations, &mockLoanChecker{}, &auditRecorder{})

	record, err := svc.Update(context.Background(), "r1", UpdateRecordRequest{
		CourseCode:   "CS102",
		CourseName:   "Data Structures",
		LecturerName: "Dr. Chen",
		Semester:     "Spring",
		AcademicYear: "2023-2024",
		DocumentType: "Grad Project",
		LocationID:   "loc-2",
	}, "sec-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "CS101-F23-001", record.FileCode)
	assert.Equal(t, "CS102", record.CourseCode)
	assert.Equal(t, "loc-2", record.LocationID)
}

func TestRecordServiceDeleteWithOpenLoan(t *testing.T) {
	repo := &mockRecordRepo{byID: &models.Record{ID: "r1", FileCode: "CS101-F23-001", Status: models.StatusBorrowed}}
	loans := &mockLoanChecker{openLoan: &models.Loan{ID: "l1", RecordID: "r1"}}
	svc := newRecordService(repo, &mockLocationFinder{}, loans, &auditRecorder{})

	err := svc.Delete(context.Background(), "r1", "adm-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deletedID)
}

func TestRecordServiceDelete(t *testing.T) {
	repo := &mockRecordRepo{byID: &models.Record{ID: "r1", FileCode: "CS101-F23-001", Status: models.StatusAvailable}}
	audit := &auditRecorder{}
	svc := newRecordService(repo, &mockLocationFinder{}, &mockLoanChecker{}, audit)

	err := svc.Delete(context.Background(), "r1", "adm-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "r1", repo.deletedID)
	require.NotNil(t, audit.last())
	assert.Equal(t, models.AuditDelete, audit.last().Action)
}

func TestRecordServiceSearchFlags(t *testing.T) {
	repo := &mockRecordRepo{searchResult: []models.Record{{ID: "r1"}, {ID: "r2"}}}
	svc := newRecordService(repo, &mockLocationFinder{}, &mockLoanChecker{}, &auditRecorder{})

	browse, err := svc.Search(context.Background(), models.RecordSearch{})
	require.NoError(t, err)
	assert.False(t, browse.Searched)
	assert.Equal(t, 2, browse.Total)

	filtered, err := svc.Search(context.Background(), models.RecordSearch{CourseCode: "CS101"})
	require.NoError(t, err)
	assert.True(t, filtered.Searched)
}

func TestRecordServiceListByStatusInvalid(t *testing.T) {
	svc := newRecordService(&mockRecordRepo{}, &mockLocationFinder{}, &mockLoanChecker{}, &auditRecorder{})

	_, err := svc.ListByStatus(context.Background(), models.RecordStatus("Lost"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
