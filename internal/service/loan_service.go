package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uniarchive/archive-api/internal/models"
	"github.com/uniarchive/archive-api/internal/policy"
	"github.com/uniarchive/archive-api/internal/repository"
	appErrors "github.com/uniarchive/archive-api/pkg/errors"
)

type loanRepository interface {
	Borrow(ctx context.Context, recordID, borrowerID string) (*models.Loan, error)
	Close(ctx context.Context, loanID string, returnedAt time.Time) (*models.Loan, error)
	FindByID(ctx context.Context, id string) (*models.Loan, error)
	ListOpen(ctx context.Context, borrowerID string) ([]models.LoanDetail, error)
}

type loanRecordReader interface {
	FindByID(ctx context.Context, id string) (*models.Record, error)
	ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.Record, error)
}

// LoanOverview is the borrow-return working set: what can be taken off the
// shelf and what is currently out.
type LoanOverview struct {
	Available []models.Record     `json:"available"`
	OpenLoans []models.LoanDetail `json:"open_loans"`
}

// LoanService drives the borrow/return state machine.
type LoanService struct {
	loans   loanRepository
	records loanRecordReader
	audit   auditAppender
	cache   *CacheService
	logger  *zap.Logger
}

// NewLoanService creates an instance of LoanService.
func NewLoanService(loans loanRepository, records loanRecordReader, audit auditAppender, cache *CacheService, logger *zap.Logger) *LoanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{loans: loans, records: records, audit: audit, cache: cache, logger: logger}
}

// Borrow opens a loan for the record on behalf of the actor. The record row
// is locked inside the repository transaction, so a losing racer gets the
// same "already borrowed" answer as a late request.
func (s *LoanService) Borrow(ctx context.Context, recordID string, actor models.JWTClaims, meta models.RequestMeta) (*models.Loan, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}

	loan, err := s.loans.Borrow(ctx, recordID, actor.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordUnavailable):
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("record %s is already borrowed", record.FileCode))
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to borrow record")
		}
	}

	s.appendAudit(ctx, actor.UserID, models.AuditBorrow, "Loan",
		fmt.Sprintf("%s borrowed record %s", actor.FullName, record.FileCode), meta)
	s.invalidateCache(ctx)

	return loan, nil
}

// Return closes a loan and puts the record back on the shelf. Borrowers may
// return their own loans; closing someone else's loan needs the privileged
// return permission.
func (s *LoanService) Return(ctx context.Context, loanID string, actor models.JWTClaims, meta models.RequestMeta) (*models.Loan, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "loan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load loan")
	}

	if loan.BorrowerID != actor.UserID && !policy.Allow(actor.Role, policy.OpLoanReturn) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only return your own loans")
	}

	closed, err := s.loans.Close(ctx, loanID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLoanClosed):
			return nil, appErrors.Clone(appErrors.ErrConflict, "loan already returned")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "loan not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to return loan")
		}
	}

	details := fmt.Sprintf("%s returned record %s", actor.FullName, loan.RecordID)
	if record, err := s.records.FindByID(ctx, loan.RecordID); err == nil {
		details = fmt.Sprintf("%s returned record %s", actor.FullName, record.FileCode)
	}
	s.appendAudit(ctx, actor.UserID, models.AuditReturn, "Loan", details, meta)
	s.invalidateCache(ctx)

	return closed, nil
}

// Overview lists available records alongside open loans. Lecturers only see
// their own loans; staff see the full ledger.
func (s *LoanService) Overview(ctx context.Context, actor models.JWTClaims) (*LoanOverview, error) {
	available, err := s.records.ListByStatus(ctx, models.StatusAvailable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available records")
	}

	borrowerFilter := ""
	if actor.Role == models.RoleLecturer {
		borrowerFilter = actor.UserID
	}
	open, err := s.loans.ListOpen(ctx, borrowerFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open loans")
	}

	return &LoanOverview{Available: available, OpenLoans: open}, nil
}

func (s *LoanService) appendAudit(ctx context.Context, actorID string, action models.AuditAction, entity, details string, meta models.RequestMeta) {
	if err := s.audit.Append(ctx, &models.AuditEntry{
		ActorID:   &actorID,
		Action:    action,
		Entity:    entity,
		Details:   details,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record loan audit entry", zap.Error(err))
	}
}

func (s *LoanService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, recordCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
