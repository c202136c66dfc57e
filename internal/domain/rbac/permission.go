package rbac

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Roles lists every role an organization can configure.
var Roles = []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

func (r Role) IsValid() bool {
	for _, role := range Roles {
		if role == r {
			return true
		}
	}
	return false
}

type Permission string

const (
	// Leave Management
	PermissionLeaveCreate             Permission = "leave.create"
	PermissionLeaveViewOwn            Permission = "leave.view_own"
	PermissionLeaveViewAll            Permission = "leave.view_all"
	PermissionLeaveApprove            Permission = "leave.approve"
	PermissionLeaveManageTypes        Permission = "leave.manage_types"
	PermissionLeaveManageEntitlements Permission = "leave.manage_entitlements"

	// Approval chains
	PermissionApprovalManage Permission = "approval.manage"

	// Role permission administration
	PermissionPermissionsManage Permission = "permissions.manage"
)

// Permissions lists every permission known to the leave core.
var Permissions = []Permission{
	PermissionLeaveCreate,
	PermissionLeaveViewOwn,
	PermissionLeaveViewAll,
	PermissionLeaveApprove,
	PermissionLeaveManageTypes,
	PermissionLeaveManageEntitlements,
	PermissionApprovalManage,
	PermissionPermissionsManage,
}

func (p Permission) IsValid() bool {
	for _, perm := range Permissions {
		if perm == p {
			return true
		}
	}
	return false
}

// DefaultRolePermissions is the starting policy written for a new
// organization. After seeding, the persisted role_permissions rows are the
// only source of truth.
var DefaultRolePermissions = map[Role][]Permission{
	RoleAdmin: Permissions,
	RoleHR: {
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveManageTypes,
		PermissionLeaveManageEntitlements,
		PermissionApprovalManage,
	},
	RoleManager: {
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
	},
	RoleEmployee: {
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
	},
}

// RolePermission is one persisted grant.
type RolePermission struct {
	OrganizationID string
	Role           Role
	Permission     Permission
}
