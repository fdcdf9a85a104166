package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniarchive/archive-api/internal/models"
)

// AuditRepository appends and reads the activity log. Entries are never
// updated or deleted through the application.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = `id, actor_id, action, entity, details, ip_address, user_agent, created_at`

// Append stores one audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_entries (id, actor_id, action, entity, details, ip_address, user_agent, created_at) VALUES (:id, :actor_id, :action, :entity, :details, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListSince returns entries created at or after the cutoff, newest first.
func (r *AuditRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]models.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries WHERE created_at >= $1 ORDER BY created_at DESC`
	args := []interface{}{since}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var entries []models.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// Recent returns the n most recent entries.
func (r *AuditRepository) Recent(ctx context.Context, n int) ([]models.AuditEntry, error) {
	if n <= 0 {
		n = 3
	}
	query := fmt.Sprintf(`SELECT %s FROM audit_entries ORDER BY created_at DESC LIMIT %d`, auditColumns, n)
	var entries []models.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("recent audit entries: %w", err)
	}
	return entries, nil
}
