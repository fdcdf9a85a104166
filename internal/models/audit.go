package models

import "time"

// AuditAction enumerates the loggable actions. Every mutating operation
// appends exactly one entry with the matching action.
type AuditAction string

const (
	AuditCreate AuditAction = "Create"
	AuditUpdate AuditAction = "Update"
	AuditDelete AuditAction = "Delete"
	AuditLogin  AuditAction = "Login"
	AuditLogout AuditAction = "Logout"
	AuditBorrow AuditAction = "Borrow"
	AuditReturn AuditAction = "Return"
)

// Valid reports whether the action is a known value.
func (a AuditAction) Valid() bool {
	switch a {
	case AuditCreate, AuditUpdate, AuditDelete, AuditLogin, AuditLogout, AuditBorrow, AuditReturn:
		return true
	}
	return false
}

// AuditEntry is an append-only record of who did what. Entries are never
// updated or removed by the application.
type AuditEntry struct {
	ID        string      `db:"id" json:"id"`
	ActorID   *string     `db:"actor_id" json:"actor_id,omitempty"`
	Action    AuditAction `db:"action" json:"action"`
	Entity    string      `db:"entity" json:"entity"`
	Details   string      `db:"details" json:"details"`
	IPAddress string      `db:"ip_address" json:"ip_address"`
	UserAgent string      `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
