package leave

import (
	"context"
	"time"
)

// CategoryRepository - interface for leave_categories table
type CategoryRepository interface {
	Create(ctx context.Context, category Category) (Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	SetActive(ctx context.Context, id string, active bool) (Category, error)
	// CreateIfAbsent inserts categories whose (organization, code) is unused
	// and returns how many were added.
	CreateIfAbsent(ctx context.Context, categories []Category) (int, error)
}

// EntitlementRepository - interface for leave_entitlements table.
//
// The balance mutators are single conditional statements. They report
// false when no row matched, either because the row is missing or because
// the condition failed; callers tell the two apart with GetByKey.
type EntitlementRepository interface {
	GetByKey(ctx context.Context, key EntitlementKey) (Entitlement, error)
	ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Entitlement, error)

	// AddPending adds days to pending. With enforceAvailable the update only
	// applies while the available balance covers days.
	AddPending(ctx context.Context, key EntitlementKey, days int, enforceAvailable bool) (bool, error)
	// MovePendingToUsed applies only while pending >= days.
	MovePendingToUsed(ctx context.Context, key EntitlementKey, days int) (bool, error)
	// RemovePending applies only while pending >= days.
	RemovePending(ctx context.Context, key EntitlementKey, days int) (bool, error)

	// Upsert writes granted and carried_over, keeping used and pending. With
	// enforceAvailable an update that would leave the available balance
	// negative returns ErrBalanceBelowCommitted.
	Upsert(ctx context.Context, entitlement Entitlement, enforceAvailable bool) (Entitlement, error)
	// CreateIfAbsent inserts records whose key is unused and returns how many were added.
	CreateIfAbsent(ctx context.Context, entitlements []Entitlement) (int, error)
}

// Decision is the single pending -> terminal transition of a request.
type Decision struct {
	Status    RequestStatus
	DecidedBy string
	DecidedAt time.Time
	Note      *string
}

// RequestRepository - interface for leave_requests table
type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)
	// UpdateDecision applies only while the request is pending and returns
	// ErrAlreadyDecided otherwise.
	UpdateDecision(ctx context.Context, id string, decision Decision) (Request, error)
	ListByEmployee(ctx context.Context, employeeID string, year *int) ([]Request, error)
	ListPendingByDepartments(ctx context.Context, departmentIDs []string, excludeEmployeeID string) ([]Request, error)
}
