package models

import "time"

// Loan links one record to one borrower. A loan with a nil ReturnedAt is
// open, which implies the record is out of the archive room.
type Loan struct {
	ID         string     `db:"id" json:"id"`
	RecordID   string     `db:"record_id" json:"record_id"`
	BorrowerID string     `db:"borrower_id" json:"borrower_id"`
	BorrowedAt time.Time  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at,omitempty"`
}

// Open reports whether the loan has not been returned yet.
func (l *Loan) Open() bool {
	return l.ReturnedAt == nil
}

// LoanDetail is a loan joined with record and borrower display fields for
// the borrow-return overview.
type LoanDetail struct {
	Loan
	FileCode     string `db:"file_code" json:"file_code"`
	CourseCode   string `db:"course_code" json:"course_code"`
	BorrowerName string `db:"borrower_name" json:"borrower_name"`
}
