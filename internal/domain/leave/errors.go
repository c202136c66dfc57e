package leave

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateRange      = errors.New("end date is before start date")
	ErrNoEntitlementRecord   = errors.New("no entitlement record for this leave category")
	ErrInsufficientBalance   = errors.New("insufficient leave balance")
	ErrAlreadyDecided        = errors.New("leave request already decided")
	ErrNotAuthorized         = errors.New("not authorized to decide this leave request")
	ErrSelfApproval          = errors.New("cannot decide your own leave request")
	ErrLeaveRequestNotFound  = errors.New("leave request not found")
	ErrEntitlementNotFound   = errors.New("entitlement not found")
	ErrCategoryNotFound      = errors.New("leave category not found")
	ErrCategoryInactive      = errors.New("leave category is inactive")
	ErrDuplicateCategoryCode = errors.New("leave category code already exists")
	ErrBalanceBelowCommitted = errors.New("granted days cannot be lower than used and pending days")

	// ErrLedgerInconsistent means a transition found fewer pending days than
	// the request reserved. The surrounding transaction is rolled back.
	ErrLedgerInconsistent = errors.New("entitlement pending days do not cover the request")
)

// InsufficientBalanceError carries the balance left for display.
type InsufficientBalanceError struct {
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: %d days remaining, %d requested", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
