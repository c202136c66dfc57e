package employee

import "context"

// EmployeeRepository reads the organization directory. The leave core never
// writes employees.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActiveByOrganization(ctx context.Context, organizationID string) ([]Employee, error)
}
