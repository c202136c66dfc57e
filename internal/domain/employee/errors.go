package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeInactive   = errors.New("employee is not active")
	ErrNotInOrganization  = errors.New("employee does not belong to this organization")
	ErrDepartmentRequired = errors.New("employee has no department")
)
