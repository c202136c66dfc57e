package approval

import "errors"

var (
	ErrDuplicateApprover  = errors.New("approver already assigned to this department")
	ErrAssignmentNotFound = errors.New("approver is not assigned to this department")
	ErrDepartmentNotFound = errors.New("department not found")
)
