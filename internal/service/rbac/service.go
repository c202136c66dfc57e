package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
)

// ModelText grants a permission to a role inside one organization.
const ModelText = `
[request_definition]
r = sub, dom, obj

[policy_definition]
p = sub, dom, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.dom == p.dom && r.obj == p.obj
`

// NewEnforcer builds an empty enforcer for ModelText.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(ModelText)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}
	return casbin.NewEnforcer(m)
}

// RBACServiceImpl answers permission checks with casbin. The enforcer holds
// no state between calls: every check reloads the organization's grants
// from role_permissions, so writes made by other processes apply at once.
type RBACServiceImpl struct {
	transactor  database.Transactor
	employees   employee.EmployeeRepository
	permissions rbac.RolePermissionRepository

	mu       sync.Mutex
	enforcer *casbin.Enforcer
}

func NewRBACService(
	transactor database.Transactor,
	enforcer *casbin.Enforcer,
	employees employee.EmployeeRepository,
	permissions rbac.RolePermissionRepository,
) *RBACServiceImpl {
	return &RBACServiceImpl{
		transactor:  transactor,
		employees:   employees,
		permissions: permissions,
		enforcer:    enforcer,
	}
}

// AuthorizeEmployee implements rbac.Authorizer.
func (s *RBACServiceImpl) AuthorizeEmployee(ctx context.Context, employeeID string, permission rbac.Permission) (employee.Employee, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}

	allowed, err := s.enforce(ctx, emp.OrganizationID, rbac.Role(emp.Role), permission)
	if err != nil {
		return employee.Employee{}, err
	}
	if !allowed {
		slog.WarnContext(ctx, "permission denied",
			"employee_id", emp.ID,
			"organization_id", emp.OrganizationID,
			"role", emp.Role,
			"permission", permission,
		)
		return employee.Employee{}, rbac.ErrPermissionDenied
	}
	return emp, nil
}

func (s *RBACServiceImpl) enforce(ctx context.Context, organizationID string, role rbac.Role, permission rbac.Permission) (bool, error) {
	grants, err := s.permissions.ListByOrganization(ctx, organizationID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadUnlocked(organizationID, grants); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(string(role), organizationID, string(permission))
	if err != nil {
		return false, fmt.Errorf("enforce %s for %s: %w", permission, role, err)
	}
	return allowed, nil
}

// loadUnlocked replaces the enforcer's policy for one organization.
func (s *RBACServiceImpl) loadUnlocked(organizationID string, grants []rbac.RolePermission) error {
	if _, err := s.enforcer.RemoveFilteredPolicy(1, organizationID); err != nil {
		return fmt.Errorf("clear policy of organization %s: %w", organizationID, err)
	}

	rules := make([][]string, 0, len(grants))
	for _, g := range grants {
		rules = append(rules, []string{string(g.Role), organizationID, string(g.Permission)})
	}
	if len(rules) > 0 {
		if _, err := s.enforcer.AddPolicies(rules); err != nil {
			return fmt.Errorf("load policy of organization %s: %w", organizationID, err)
		}
	}
	return nil
}

// ListRolePermissions implements rbac.RBACService.
func (s *RBACServiceImpl) ListRolePermissions(ctx context.Context, actorID string, role string) (rbac.RolePermissionsResponse, error) {
	if !rbac.Role(role).IsValid() {
		return rbac.RolePermissionsResponse{}, rbac.ErrInvalidRole
	}

	actor, err := s.AuthorizeEmployee(ctx, actorID, rbac.PermissionPermissionsManage)
	if err != nil {
		return rbac.RolePermissionsResponse{}, err
	}

	return s.rolePermissions(ctx, actor.OrganizationID, rbac.Role(role))
}

func (s *RBACServiceImpl) rolePermissions(ctx context.Context, organizationID string, role rbac.Role) (rbac.RolePermissionsResponse, error) {
	grants, err := s.permissions.ListByOrganization(ctx, organizationID)
	if err != nil {
		return rbac.RolePermissionsResponse{}, err
	}

	resp := rbac.RolePermissionsResponse{Role: role, Permissions: make([]rbac.Permission, 0)}
	for _, g := range grants {
		if g.Role == role {
			resp.Permissions = append(resp.Permissions, g.Permission)
		}
	}
	return resp, nil
}

// SetRolePermissions implements rbac.RBACService.
func (s *RBACServiceImpl) SetRolePermissions(ctx context.Context, req rbac.SetRolePermissionsRequest) (rbac.RolePermissionsResponse, error) {
	if err := req.Validate(); err != nil {
		return rbac.RolePermissionsResponse{}, err
	}

	actor, err := s.AuthorizeEmployee(ctx, req.ActorID, rbac.PermissionPermissionsManage)
	if err != nil {
		return rbac.RolePermissionsResponse{}, err
	}

	role := rbac.Role(req.Role)
	permissions := make([]rbac.Permission, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		permissions = append(permissions, rbac.Permission(p))
	}

	// The actor's own role keeps permissions.manage.
	if role == rbac.Role(actor.Role) && !containsPermission(permissions, rbac.PermissionPermissionsManage) {
		return rbac.RolePermissionsResponse{}, rbac.ErrSelfLockout
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.permissions.ReplaceForRole(ctx, actor.OrganizationID, role, permissions)
	})
	if err != nil {
		return rbac.RolePermissionsResponse{}, err
	}

	slog.InfoContext(ctx, "role permissions replaced",
		"organization_id", actor.OrganizationID,
		"role", role,
		"permissions", len(permissions),
		"actor_id", actor.ID,
	)

	return s.rolePermissions(ctx, actor.OrganizationID, role)
}

// SeedDefaults implements rbac.RBACService. Existing grants are kept.
func (s *RBACServiceImpl) SeedDefaults(ctx context.Context, organizationID string) (int, error) {
	grants := fixtures.GetDefaultRolePermissions(organizationID)

	var added int
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		added, err = s.permissions.InsertMissing(ctx, grants)
		return err
	})
	if err != nil {
		return 0, err
	}

	return added, nil
}

func containsPermission(permissions []rbac.Permission, target rbac.Permission) bool {
	for _, p := range permissions {
		if p == target {
			return true
		}
	}
	return false
}
