package employee

import "time"

// Employee is the subset of the organization directory the leave core reads.
type Employee struct {
	ID             string
	OrganizationID string
	DepartmentID   *string
	EmployeeCode   string
	FullName       string
	Role           string
	Status         EmploymentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// InDepartment reports whether the employee belongs to departmentID.
func (e Employee) InDepartment(departmentID string) bool {
	return e.DepartmentID != nil && *e.DepartmentID == departmentID
}

// IsActive reports whether the employee is still employed.
func (e Employee) IsActive() bool {
	return e.Status == EmploymentStatusActive
}
