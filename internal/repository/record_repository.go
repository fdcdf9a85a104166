package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniarchive/archive-api/internal/models"
)

// RecordRepository handles archive record persistence.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, file_code, course_code, course_name, lecturer_name, semester, academic_year, exam_type, document_type, cloud_file_id, cloud_file_link, has_digital_copy, location_id, uploaded_by, uploaded_at, status`

// Create stores a new record.
func (r *RecordRepository) Create(ctx context.Context, record *models.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO records
	(id, file_code, course_code, course_name, lecturer_name, semester, academic_year, exam_type, document_type, cloud_file_id, cloud_file_link, has_digital_copy, location_id, uploaded_by, uploaded_at, status)
	VALUES (:id, :file_code, :course_code, :course_name, :lecturer_name, :semester, :academic_year, :exam_type, :document_type, :cloud_file_id, :cloud_file_link, :has_digital_copy, :location_id, :uploaded_by, :uploaded_at, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// FindByID retrieves one record.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1 LIMIT 1`
	var record models.Record
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find record by id: %w", err)
	}
	return &record, nil
}

// FindByFileCode retrieves one record by its external file code.
func (r *RecordRepository) FindByFileCode(ctx context.Context, fileCode string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE file_code = $1 LIMIT 1`
	var record models.Record
	if err := r.db.GetContext(ctx, &record, query, fileCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find record by file code: %w", err)
	}
	return &record, nil
}

// Update rewrites the mutable fields of a record. The file code is
// immutable after creation and is deliberately absent here.
func (r *RecordRepository) Update(ctx context.Context, record *models.Record) error {
	const query = `UPDATE records SET course_code = :course_code, course_name = :course_name, lecturer_name = :lecturer_name, semester = :semester, academic_year = :academic_year, exam_type = :exam_type, document_type = :document_type, cloud_file_id = :cloud_file_id, cloud_file_link = :cloud_file_link, has_digital_copy = :has_digital_copy, location_id = :location_id, status = :status WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check record update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus changes only the lifecycle status of a record.
func (r *RecordRepository) UpdateStatus(ctx context.Context, id string, status models.RecordStatus) error {
	const query = `UPDATE records SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update record status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check record status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete permanently removes a record.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM records WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check record delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Search applies the optional filters: case-insensitive substring match on
// course code, course name and lecturer, exact match on year, semester and
// document type. An empty filter returns the full catalog.
func (r *RecordRepository) Search(ctx context.Context, filter models.RecordSearch) ([]models.Record, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + recordColumns + ` FROM records`)
	args := make([]interface{}, 0, 6)
	conditions := make([]string, 0, 6)

	if filter.CourseCode != "" {
		args = append(args, "%"+filter.CourseCode+"%")
		conditions = append(conditions, fmt.Sprintf("course_code ILIKE $%d", len(args)))
	}
	if filter.CourseName != "" {
		args = append(args, "%"+filter.CourseName+"%")
		conditions = append(conditions, fmt.Sprintf("course_name ILIKE $%d", len(args)))
	}
	if filter.Lecturer != "" {
		args = append(args, "%"+filter.Lecturer+"%")
		conditions = append(conditions, fmt.Sprintf("lecturer_name ILIKE $%d", len(args)))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)))
	}
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.DocumentType != "" {
		args = append(args, filter.DocumentType)
		conditions = append(conditions, fmt.Sprintf("document_type = $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY uploaded_at DESC")

	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return records, nil
}

// ListByStatus returns records with the given status, newest first.
func (r *RecordRepository) ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE status = $1 ORDER BY uploaded_at DESC`
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, status); err != nil {
		return nil, fmt.Errorf("list records by status: %w", err)
	}
	return records, nil
}

// ListUploadedSince returns records uploaded at or after the cutoff.
func (r *RecordRepository) ListUploadedSince(ctx context.Context, since time.Time) ([]models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE uploaded_at >= $1 ORDER BY uploaded_at DESC`
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, since); err != nil {
		return nil, fmt.Errorf("list records uploaded since: %w", err)
	}
	return records, nil
}

// Count returns the total number of records.
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM records`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of records with the given status.
func (r *RecordRepository) CountByStatus(ctx context.Context, status models.RecordStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM records WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("count records by status: %w", err)
	}
	return count, nil
}

// CountUploadedSince returns the number of records uploaded at or after the cutoff.
func (r *RecordRepository) CountUploadedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM records WHERE uploaded_at >= $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, since); err != nil {
		return 0, fmt.Errorf("count records uploaded since: %w", err)
	}
	return count, nil
}
