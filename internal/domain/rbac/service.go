package rbac

import (
	"context"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
)

// Authorizer evaluates the persisted role policy of the caller's organization.
type Authorizer interface {
	// AuthorizeEmployee loads the employee, checks the permission against its
	// role and returns the employee on success.
	AuthorizeEmployee(ctx context.Context, employeeID string, permission Permission) (employee.Employee, error)
}

type RBACService interface {
	Authorizer
	ListRolePermissions(ctx context.Context, actorID string, role string) (RolePermissionsResponse, error)
	SetRolePermissions(ctx context.Context, req SetRolePermissionsRequest) (RolePermissionsResponse, error)
	SeedDefaults(ctx context.Context, organizationID string) (int, error)
}
