package rbac

import (
	"context"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeEmployees) ListActiveByOrganization(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	return nil, nil
}

type fakePermissions struct {
	mu     sync.Mutex
	grants []rbac.RolePermission
	reads  int
}

func (f *fakePermissions) ListByOrganization(ctx context.Context, organizationID string) ([]rbac.RolePermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++

	result := make([]rbac.RolePermission, 0)
	for _, g := range f.grants {
		if g.OrganizationID == organizationID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (f *fakePermissions) ReplaceForRole(ctx context.Context, organizationID string, role rbac.Role, permissions []rbac.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := make([]rbac.RolePermission, 0, len(f.grants))
	for _, g := range f.grants {
		if g.OrganizationID != organizationID || g.Role != role {
			kept = append(kept, g)
		}
	}
	for _, p := range permissions {
		kept = append(kept, rbac.RolePermission{OrganizationID: organizationID, Role: role, Permission: p})
	}
	f.grants = kept
	return nil
}

func (f *fakePermissions) InsertMissing(ctx context.Context, grants []rbac.RolePermission) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	added := 0
	for _, g := range grants {
		exists := false
		for _, cur := range f.grants {
			if cur == g {
				exists = true
				break
			}
		}
		if !exists {
			f.grants = append(f.grants, g)
			added++
		}
	}
	return added, nil
}

const (
	orgID     = "org-1"
	adminID   = "emp-admin"
	managerID = "emp-manager"
	staffID   = "emp-staff"
	leaverID  = "emp-leaver"
	foreignID = "emp-foreign"
)

func newTestService(t *testing.T) (*RBACServiceImpl, *fakePermissions) {
	t.Helper()

	enforcer, err := NewEnforcer()
	require.NoError(t, err)

	employees := fakeEmployees{
		adminID:   {ID: adminID, OrganizationID: orgID, Role: string(rbac.RoleAdmin), Status: employee.EmploymentStatusActive},
		managerID: {ID: managerID, OrganizationID: orgID, Role: string(rbac.RoleManager), Status: employee.EmploymentStatusActive},
		staffID:   {ID: staffID, OrganizationID: orgID, Role: string(rbac.RoleEmployee), Status: employee.EmploymentStatusActive},
		leaverID:  {ID: leaverID, OrganizationID: orgID, Role: string(rbac.RoleAdmin), Status: employee.EmploymentStatusResigned},
		foreignID: {ID: foreignID, OrganizationID: "org-2", Role: string(rbac.RoleAdmin), Status: employee.EmploymentStatusActive},
	}
	permissions := &fakePermissions{}

	service := NewRBACService(fakeTransactor{}, enforcer, employees, permissions)
	_, err = service.SeedDefaults(context.Background(), orgID)
	require.NoError(t, err)

	return service, permissions
}

func TestRBACService_AuthorizeEmployee(t *testing.T) {
	ctx := context.Background()
	service, permissions := newTestService(t)

	cases := []struct {
		name       string
		employeeID string
		permission rbac.Permission
		wantErr    error
	}{
		{name: "manager approves", employeeID: managerID, permission: rbac.PermissionLeaveApprove},
		{name: "employee submits", employeeID: staffID, permission: rbac.PermissionLeaveCreate},
		{name: "employee cannot approve", employeeID: staffID, permission: rbac.PermissionLeaveApprove, wantErr: rbac.ErrPermissionDenied},
		{name: "manager cannot edit chains", employeeID: managerID, permission: rbac.PermissionApprovalManage, wantErr: rbac.ErrPermissionDenied},
		{name: "inactive employee", employeeID: leaverID, permission: rbac.PermissionLeaveViewOwn, wantErr: employee.ErrEmployeeInactive},
		{name: "unknown employee", employeeID: "emp-ghost", permission: rbac.PermissionLeaveViewOwn, wantErr: employee.ErrEmployeeNotFound},
		// org-2 was never seeded, so nothing is granted there.
		{name: "unseeded organization", employeeID: foreignID, permission: rbac.PermissionLeaveViewOwn, wantErr: rbac.ErrPermissionDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emp, err := service.AuthorizeEmployee(ctx, tc.employeeID, tc.permission)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.employeeID, emp.ID)
		})
	}

	// Every check reads the persisted policy.
	assert.Equal(t, 5, permissions.reads)
}

func TestRBACService_SeesGrantsWrittenElsewhere(t *testing.T) {
	ctx := context.Background()
	service, permissions := newTestService(t)

	t.Run("grant", func(t *testing.T) {
		_, err := service.AuthorizeEmployee(ctx, foreignID, rbac.PermissionLeaveApprove)
		require.ErrorIs(t, err, rbac.ErrPermissionDenied)

		// Another process seeds org-2 directly in role_permissions.
		_, err = permissions.InsertMissing(ctx, []rbac.RolePermission{
			{OrganizationID: "org-2", Role: rbac.RoleAdmin, Permission: rbac.PermissionLeaveApprove},
		})
		require.NoError(t, err)

		_, err = service.AuthorizeEmployee(ctx, foreignID, rbac.PermissionLeaveApprove)
		assert.NoError(t, err)
	})

	t.Run("revocation", func(t *testing.T) {
		_, err := service.AuthorizeEmployee(ctx, managerID, rbac.PermissionLeaveApprove)
		require.NoError(t, err)

		require.NoError(t, permissions.ReplaceForRole(ctx, orgID, rbac.RoleManager, []rbac.Permission{rbac.PermissionLeaveViewOwn}))

		_, err = service.AuthorizeEmployee(ctx, managerID, rbac.PermissionLeaveApprove)
		assert.ErrorIs(t, err, rbac.ErrPermissionDenied)
	})
}

func TestRBACService_SetRolePermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("replacement takes effect immediately", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.AuthorizeEmployee(ctx, managerID, rbac.PermissionLeaveApprove)
		require.NoError(t, err)

		resp, err := service.SetRolePermissions(ctx, rbac.SetRolePermissionsRequest{
			ActorID:     adminID,
			Role:        string(rbac.RoleManager),
			Permissions: []string{"leave.create", "leave.view_own"},
		})
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleManager, resp.Role)
		assert.ElementsMatch(t, []rbac.Permission{rbac.PermissionLeaveCreate, rbac.PermissionLeaveViewOwn}, resp.Permissions)

		_, err = service.AuthorizeEmployee(ctx, managerID, rbac.PermissionLeaveApprove)
		assert.ErrorIs(t, err, rbac.ErrPermissionDenied)

		_, err = service.AuthorizeEmployee(ctx, managerID, rbac.PermissionLeaveCreate)
		assert.NoError(t, err)
	})

	t.Run("own role keeps permissions.manage", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.SetRolePermissions(ctx, rbac.SetRolePermissionsRequest{
			ActorID:     adminID,
			Role:        string(rbac.RoleAdmin),
			Permissions: []string{"leave.create"},
		})
		assert.ErrorIs(t, err, rbac.ErrSelfLockout)

		_, err = service.AuthorizeEmployee(ctx, adminID, rbac.PermissionPermissionsManage)
		assert.NoError(t, err)
	})

	t.Run("empty set revokes everything", func(t *testing.T) {
		service, _ := newTestService(t)

		resp, err := service.SetRolePermissions(ctx, rbac.SetRolePermissionsRequest{
			ActorID: adminID,
			Role:    string(rbac.RoleEmployee),
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Permissions)

		_, err = service.AuthorizeEmployee(ctx, staffID, rbac.PermissionLeaveCreate)
		assert.ErrorIs(t, err, rbac.ErrPermissionDenied)
	})

	t.Run("invalid payload", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.SetRolePermissions(ctx, rbac.SetRolePermissionsRequest{
			ActorID:     adminID,
			Role:        "owner",
			Permissions: []string{"leave.create", "leave.create", "leave.fly"},
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := verrs.ToMap()
		assert.Contains(t, fields, "role")
		assert.Contains(t, fields, "permissions[1]")
		assert.Contains(t, fields, "permissions[2]")
	})

	t.Run("managers cannot change policy", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.SetRolePermissions(ctx, rbac.SetRolePermissionsRequest{
			ActorID:     managerID,
			Role:        string(rbac.RoleManager),
			Permissions: []string{"approval.manage"},
		})
		assert.ErrorIs(t, err, rbac.ErrPermissionDenied)
	})
}

func TestRBACService_ListRolePermissions(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	resp, err := service.ListRolePermissions(ctx, adminID, string(rbac.RoleEmployee))
	require.NoError(t, err)
	assert.ElementsMatch(t, rbac.DefaultRolePermissions[rbac.RoleEmployee], resp.Permissions)

	_, err = service.ListRolePermissions(ctx, adminID, "owner")
	assert.ErrorIs(t, err, rbac.ErrInvalidRole)

	_, err = service.ListRolePermissions(ctx, staffID, string(rbac.RoleEmployee))
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied)
}

func TestRBACService_SeedDefaults(t *testing.T) {
	ctx := context.Background()
	service, permissions := newTestService(t)

	total := 0
	for _, perms := range rbac.DefaultRolePermissions {
		total += len(perms)
	}
	assert.Len(t, permissions.grants, total)

	added, err := service.SeedDefaults(ctx, orgID)
	require.NoError(t, err)
	assert.Zero(t, added)

	// A customised role is not reset by a second seed.
	_, err = service.SetRolePermissions(ctx, rbac.SetRolePermissionsRequest{
		ActorID:     adminID,
		Role:        string(rbac.RoleManager),
		Permissions: []string{"leave.view_own"},
	})
	require.NoError(t, err)

	added, err = service.SeedDefaults(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, len(rbac.DefaultRolePermissions[rbac.RoleManager])-1, added)

	added, err = service.SeedDefaults(ctx, "org-2")
	require.NoError(t, err)
	assert.Equal(t, total, added)

	_, err = service.AuthorizeEmployee(ctx, foreignID, rbac.PermissionPermissionsManage)
	assert.NoError(t, err)
}
