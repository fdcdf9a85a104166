// Package policy holds the role/operation permission table. It is a pure
// lookup: callers translate a denial into an HTTP response, the policy
// itself never touches state.
package policy

import "github.com/uniarchive/archive-api/internal/models"

// Operation identifies a permission-gated action.
type Operation string

const (
	OpRecordCreate Operation = "record:create"
	OpRecordUpdate Operation = "record:update"
	OpRecordDelete Operation = "record:delete"
	OpRecordRead   Operation = "record:read"

	OpLocationManage Operation = "location:manage"

	OpLoanBorrow Operation = "loan:borrow"
	// OpLoanReturn covers privileged returns. Borrowers returning their
	// own loan are authorised by the loan service, not by this table.
	OpLoanReturn Operation = "loan:return"
	OpLoanRead   Operation = "loan:read"

	OpUserManage Operation = "user:manage"
	OpLogView    Operation = "log:view"
	OpHomeView   Operation = "home:view"
)

var rules = map[Operation]map[models.UserRole]struct{}{
	OpRecordCreate:   adminSecretary(),
	OpRecordUpdate:   adminSecretary(),
	OpRecordDelete:   adminSecretary(),
	OpLocationManage: adminSecretary(),
	OpLoanReturn:     adminSecretary(),
	OpUserManage:     adminOnly(),
	OpLogView:        adminOnly(),
	OpRecordRead:     everyone(),
	OpLoanBorrow:     everyone(),
	OpLoanRead:       everyone(),
	OpHomeView:       everyone(),
}

// Allow reports whether the role may perform the operation. Unknown
// operations are denied.
func Allow(role models.UserRole, op Operation) bool {
	allowed, ok := rules[op]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}

func adminOnly() map[models.UserRole]struct{} {
	return map[models.UserRole]struct{}{models.RoleAdmin: {}}
}

func adminSecretary() map[models.UserRole]struct{} {
	return map[models.UserRole]struct{}{models.RoleAdmin: {}, models.RoleSecretary: {}}
}

func everyone() map[models.UserRole]struct{} {
	return map[models.UserRole]struct{}{
		models.RoleAdmin:     {},
		models.RoleSecretary: {},
		models.RoleLecturer:  {},
	}
}
