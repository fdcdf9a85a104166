package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uniarchive/archive-api/internal/models"
)

func TestAllowRecordMutations(t *testing.T) {
	for _, op := range []Operation{OpRecordCreate, OpRecordUpdate, OpRecordDelete} {
		assert.True(t, Allow(models.RoleAdmin, op), "admin %s", op)
		assert.True(t, Allow(models.RoleSecretary, op), "secretary %s", op)
		assert.False(t, Allow(models.RoleLecturer, op), "lecturer %s", op)
	}
}

func TestAllowAdminOnlyOperations(t *testing.T) {
	for _, op := range []Operation{OpUserManage, OpLogView} {
		assert.True(t, Allow(models.RoleAdmin, op))
		assert.False(t, Allow(models.RoleSecretary, op))
		assert.False(t, Allow(models.RoleLecturer, op))
	}
}

func TestAllowReadsForEveryRole(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleSecretary, models.RoleLecturer} {
		assert.True(t, Allow(role, OpRecordRead))
		assert.True(t, Allow(role, OpLoanBorrow))
		assert.True(t, Allow(role, OpLoanRead))
		assert.True(t, Allow(role, OpHomeView))
	}
}

func TestAllowPrivilegedReturn(t *testing.T) {
	assert.True(t, Allow(models.RoleAdmin, OpLoanReturn))
	assert.True(t, Allow(models.RoleSecretary, OpLoanReturn))
	assert.False(t, Allow(models.RoleLecturer, OpLoanReturn))
}

func TestAllowUnknownOperationDenied(t *testing.T) {
	assert.False(t, Allow(models.RoleAdmin, Operation("nonsense")))
}
