package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniarchive/archive-api/internal/models"
)

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "file_code", "course_code", "course_name", "lecturer_name", "semester", "academic_year", "exam_type", "document_type", "cloud_file_id", "cloud_file_link", "has_digital_copy", "location_id", "uploaded_by", "uploaded_at", "status"})
}

func TestCreateRecord(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectExec("INSERT INTO records").WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Record{
		FileCode:     "FC-001",
		CourseCode:   "CS101",
		CourseName:   "Intro to Computing",
		LecturerName: "Dr. Ayşe",
		Semester:     models.SemesterFall,
		AcademicYear: "2024-2025",
		DocumentType: models.DocGradProject,
		LocationID:   "loc-1",
		Status:       models.StatusAvailable,
	}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.UploadedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRecordsNoFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	now := time.Now()
	rows := recordRows().
		AddRow("1", "FC-001", "CS101", "Intro", "Dr. A", "Fall", "2024-2025", nil, "Exam", nil, nil, false, "loc-1", nil, now, "Available").
		AddRow("2", "FC-002", "CS102", "Data", "Dr. B", "Spring", "2024-2025", nil, "Grad Project", nil, nil, true, "loc-2", nil, now, "Borrowed")
	mock.ExpectQuery("SELECT (.+) FROM records ORDER BY uploaded_at DESC").WillReturnRows(rows)

	records, err := repo.Search(context.Background(), models.RecordSearch{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRecordsByCourseCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	now := time.Now()
	rows := recordRows().
		AddRow("1", "FC-001", "CS101", "Intro", "Dr. A", "Fall", "2024-2025", nil, "Exam", nil, nil, false, "loc-1", nil, now, "Available")
	mock.ExpectQuery(regexp.QuoteMeta("course_code ILIKE $1")).
		WithArgs("%CS101%").
		WillReturnRows(rows)

	records, err := repo.Search(context.Background(), models.RecordSearch{CourseCode: "CS101"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CS101", records[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRecordsCombinedFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("lecturer_name ILIKE $1 AND semester = $2")).
		WithArgs("%ayşe%", "Fall").
		WillReturnRows(recordRows())

	records, err := repo.Search(context.Background(), models.RecordSearch{Lecturer: "ayşe", Semester: "Fall"})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecordUnknownID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectExec("UPDATE records SET course_code").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Record{ID: "missing"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRecordsByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM records WHERE status = $1")).
		WithArgs(models.StatusAvailable).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByStatus(context.Background(), models.StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
