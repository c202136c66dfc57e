package leave

import (
	"context"
)

// Ledger is the only writer of entitlement balances.
type Ledger interface {
	GetBalance(ctx context.Context, employeeID, categoryID string, year int) (Entitlement, error)
	// Reserve reports whether pending days were booked on a ledger row. It
	// is false for an unbounded category without a record.
	Reserve(ctx context.Context, category Category, employeeID string, year, days int) (bool, error)
	CommitUsed(ctx context.Context, category Category, employeeID string, year, days int) error
	Release(ctx context.Context, category Category, employeeID string, year, days int) error
}

// ApproverResolver answers whether an employee sits in a department's approval chain.
type ApproverResolver interface {
	IsApprover(ctx context.Context, departmentID, approverID string) (bool, error)
}

type RequestService interface {
	Submit(ctx context.Context, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	Decide(ctx context.Context, req DecideLeaveRequest) (LeaveRequestResponse, error)
	Check(ctx context.Context, req SubmitLeaveRequest) (EligibilityResult, error)
	ListByEmployee(ctx context.Context, employeeID string, year *int) ([]LeaveRequestResponse, error)
	Get(ctx context.Context, actorID, requestID string) (LeaveRequestResponse, error)
}

type CategoryService interface {
	Create(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error)
	Update(ctx context.Context, req UpdateCategoryRequest) (CategoryResponse, error)
	ToggleActive(ctx context.Context, actorID, id string) (CategoryResponse, error)
	List(ctx context.Context, actorID string, includeInactive bool) ([]CategoryResponse, error)
	SeedDefaults(ctx context.Context, organizationID string) (int, error)
}

type EntitlementService interface {
	ListMine(ctx context.Context, employeeID string, year int) ([]EntitlementResponse, error)
	ListByEmployee(ctx context.Context, actorID, employeeID string, year int) ([]EntitlementResponse, error)
	Upsert(ctx context.Context, req UpsertEntitlementRequest) (EntitlementResponse, error)
	Provision(ctx context.Context, req ProvisionEntitlementsRequest) (ProvisionEntitlementsResponse, error)
}
