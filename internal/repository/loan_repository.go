package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniarchive/archive-api/internal/models"
)

// Sentinel outcomes for the borrow/return state machine.
var (
	// ErrRecordUnavailable is returned when the record is already out on
	// loan (or archived) at the time of the borrow attempt.
	ErrRecordUnavailable = errors.New("record is not available for borrowing")
	// ErrLoanClosed is returned when a return targets a loan that already
	// has a return timestamp.
	ErrLoanClosed = errors.New("loan is already closed")
)

// LoanRepository persists borrow transactions and drives the record status
// transitions that accompany them.
type LoanRepository struct {
	db *sqlx.DB
}

// NewLoanRepository constructs the repository.
func NewLoanRepository(db *sqlx.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

const loanColumns = `id, record_id, borrower_id, borrowed_at, returned_at`

// Borrow opens a loan for the record. The record row is locked for the
// duration of the transaction so two concurrent borrows cannot both pass
// the availability check.
func (r *LoanRepository) Borrow(ctx context.Context, recordID, borrowerID string) (*models.Loan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin borrow tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var status models.RecordStatus
	if err := tx.GetContext(ctx, &status, `SELECT status FROM records WHERE id = $1 FOR UPDATE`, recordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock record for borrow: %w", err)
	}

	if status != models.StatusAvailable {
		return nil, ErrRecordUnavailable
	}

	loan := &models.Loan{
		ID:         uuid.NewString(),
		RecordID:   recordID,
		BorrowerID: borrowerID,
		BorrowedAt: time.Now().UTC(),
	}

	const insert = `INSERT INTO loans (id, record_id, borrower_id, borrowed_at, returned_at) VALUES (:id, :record_id, :borrower_id, :borrowed_at, :returned_at)`
	if _, err := tx.NamedExecContext(ctx, insert, loan); err != nil {
		return nil, fmt.Errorf("create loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE records SET status = $2 WHERE id = $1`, recordID, models.StatusBorrowed); err != nil {
		return nil, fmt.Errorf("mark record borrowed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit borrow tx: %w", err)
	}
	return loan, nil
}

// Close sets the return timestamp on an open loan and flips the record back
// to Available. Closing an already-closed loan is rejected.
func (r *LoanRepository) Close(ctx context.Context, loanID string, returnedAt time.Time) (*models.Loan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var loan models.Loan
	if err := tx.GetContext(ctx, &loan, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock loan for return: %w", err)
	}

	if loan.ReturnedAt != nil {
		return nil, ErrLoanClosed
	}

	returnedAt = returnedAt.UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE loans SET returned_at = $2 WHERE id = $1`, loanID, returnedAt); err != nil {
		return nil, fmt.Errorf("close loan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE records SET status = $2 WHERE id = $1`, loan.RecordID, models.StatusAvailable); err != nil {
		return nil, fmt.Errorf("mark record available: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit return tx: %w", err)
	}

	loan.ReturnedAt = &returnedAt
	return &loan, nil
}

// FindByID retrieves one loan.
func (r *LoanRepository) FindByID(ctx context.Context, id string) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 LIMIT 1`
	var loan models.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find loan by id: %w", err)
	}
	return &loan, nil
}

// FindOpenByRecord returns the open loan for a record, if any.
func (r *LoanRepository) FindOpenByRecord(ctx context.Context, recordID string) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE record_id = $1 AND returned_at IS NULL LIMIT 1`
	var loan models.Loan
	if err := r.db.GetContext(ctx, &loan, query, recordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find open loan by record: %w", err)
	}
	return &loan, nil
}

// ListOpen returns open loans joined with record and borrower display
// fields, newest first. A non-empty borrowerID restricts the listing to
// that borrower's own loans.
func (r *LoanRepository) ListOpen(ctx context.Context, borrowerID string) ([]models.LoanDetail, error) {
	query := `SELECT l.id, l.record_id, l.borrower_id, l.borrowed_at, l.returned_at, r.file_code, r.course_code, u.full_name AS borrower_name
	FROM loans l
	JOIN records r ON r.id = l.record_id
	JOIN users u ON u.id = l.borrower_id
	WHERE l.returned_at IS NULL`
	args := []interface{}{}
	if borrowerID != "" {
		query += ` AND l.borrower_id = $1`
		args = append(args, borrowerID)
	}
	query += ` ORDER BY l.borrowed_at DESC`

	var loans []models.LoanDetail
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("list open loans: %w", err)
	}
	return loans, nil
}

// CountOpen returns the number of open loans.
func (r *LoanRepository) CountOpen(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM loans WHERE returned_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count open loans: %w", err)
	}
	return count, nil
}
