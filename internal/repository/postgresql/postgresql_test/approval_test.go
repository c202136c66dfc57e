package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainOf(t *testing.T, repo approval.AssignmentRepository, departmentID string) []string {
	t.Helper()

	assignments, err := repo.ListByDepartment(context.Background(), departmentID)
	require.NoError(t, err)

	ids := make([]string, 0, len(assignments))
	for i, a := range assignments {
		require.Equal(t, i+1, a.Order, "orders are dense")
		ids = append(ids, a.ApproverID)
	}
	return ids
}

func TestDepartmentApprover_InsertAndResequence(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewDepartmentApproverRepository(testDB)
	transactor := postgresql.NewTransactor(testDB)

	insert := func(approverID string, order int) error {
		return transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := repo.LockDepartment(ctx, f.OrganizationID, f.DepartmentID); err != nil {
				return err
			}
			_, err := repo.Insert(ctx, f.DepartmentID, approverID, order)
			return err
		})
	}

	require.NoError(t, insert(f.ApproverAID, 1))
	require.NoError(t, insert(f.ApproverBID, 2))
	assert.Equal(t, []string{f.ApproverAID, f.ApproverBID}, chainOf(t, repo, f.DepartmentID))

	// The owner goes to the head and everyone shifts down.
	require.NoError(t, insert(f.OwnerID, 1))
	assert.Equal(t, []string{f.OwnerID, f.ApproverAID, f.ApproverBID}, chainOf(t, repo, f.DepartmentID))

	assert.ErrorIs(t, insert(f.ApproverBID, 1), approval.ErrDuplicateApprover)
	assert.Equal(t, []string{f.OwnerID, f.ApproverAID, f.ApproverBID}, chainOf(t, repo, f.DepartmentID))

	require.NoError(t, repo.Delete(ctx, f.DepartmentID, f.OwnerID))
	assert.Equal(t, []string{f.ApproverAID, f.ApproverBID}, chainOf(t, repo, f.DepartmentID))

	require.NoError(t, repo.Delete(ctx, f.DepartmentID, f.ApproverAID))
	assignments, err := repo.ListByDepartment(ctx, f.DepartmentID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, f.ApproverBID, assignments[0].ApproverID)
	assert.Equal(t, 1, assignments[0].Order)
	assert.Equal(t, "Boonsri Approver", *assignments[0].ApproverName)

	assert.ErrorIs(t, repo.Delete(ctx, f.DepartmentID, f.ApproverAID), approval.ErrAssignmentNotFound)

	exists, err := repo.Exists(ctx, f.DepartmentID, f.ApproverBID)
	require.NoError(t, err)
	assert.True(t, exists)

	departments, err := repo.ListDepartmentsByApprover(ctx, f.ApproverBID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.DepartmentID}, departments)
}

func TestDepartmentApprover_CheckDepartmentScopesOrganization(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewDepartmentApproverRepository(testDB)

	assert.NoError(t, repo.CheckDepartment(ctx, f.OrganizationID, f.DepartmentID))
	assert.ErrorIs(t, repo.CheckDepartment(ctx, newID(), f.DepartmentID), approval.ErrDepartmentNotFound)
	assert.ErrorIs(t, repo.CheckDepartment(ctx, f.OrganizationID, newID()), approval.ErrDepartmentNotFound)
}

func TestRolePermission_ReplaceAndSeed(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewRolePermissionRepository(testDB)

	defaults := fixtures.GetDefaultRolePermissions(f.OrganizationID)
	added, err := repo.InsertMissing(ctx, defaults)
	require.NoError(t, err)
	assert.Equal(t, len(defaults), added)

	added, err = repo.InsertMissing(ctx, defaults)
	require.NoError(t, err)
	assert.Zero(t, added)

	err = repo.ReplaceForRole(ctx, f.OrganizationID, rbac.RoleManager, []rbac.Permission{rbac.PermissionLeaveViewOwn})
	require.NoError(t, err)

	grants, err := repo.ListByOrganization(ctx, f.OrganizationID)
	require.NoError(t, err)

	manager := make([]rbac.Permission, 0)
	for _, g := range grants {
		if g.Role == rbac.RoleManager {
			manager = append(manager, g.Permission)
		}
	}
	assert.Equal(t, []rbac.Permission{rbac.PermissionLeaveViewOwn}, manager)
	assert.Len(t, grants, len(defaults)-len(rbac.DefaultRolePermissions[rbac.RoleManager])+1)
}
