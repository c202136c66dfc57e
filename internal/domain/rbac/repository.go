package rbac

import "context"

// RolePermissionRepository - interface for role_permissions table
type RolePermissionRepository interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]RolePermission, error)
	ReplaceForRole(ctx context.Context, organizationID string, role Role, permissions []Permission) error
	// InsertMissing writes grants that do not exist yet and returns how many were added.
	InsertMissing(ctx context.Context, grants []RolePermission) (int, error)
}
