package approval

import "context"

// AssignmentRepository - interface for department_approvers table
type AssignmentRepository interface {
	// LockDepartment serializes chain edits for one department until the
	// surrounding transaction ends. Returns ErrDepartmentNotFound when the
	// department does not belong to organizationID.
	LockDepartment(ctx context.Context, organizationID, departmentID string) error
	// CheckDepartment returns ErrDepartmentNotFound when the department does
	// not belong to organizationID.
	CheckDepartment(ctx context.Context, organizationID, departmentID string) error
	ListByDepartment(ctx context.Context, departmentID string) ([]Assignment, error)
	ListDepartmentsByApprover(ctx context.Context, approverID string) ([]string, error)
	Exists(ctx context.Context, departmentID, approverID string) (bool, error)
	// Insert places the approver at order, moving entries at or after it down by one.
	Insert(ctx context.Context, departmentID, approverID string, order int) (Assignment, error)
	// Delete removes the entry and renumbers the rest 1..N.
	Delete(ctx context.Context, departmentID, approverID string) error
}
