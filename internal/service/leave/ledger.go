package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

// Ledger applies balance transitions to leave_entitlements. Every mutation
// is one conditional statement, so it is safe under concurrent callers and
// callers wrap it in their transaction for atomicity with the request row.
type Ledger struct {
	entitlements leave.EntitlementRepository
}

func NewLedger(entitlements leave.EntitlementRepository) *Ledger {
	return &Ledger{entitlements: entitlements}
}

// GetBalance implements leave.Ledger.
func (l *Ledger) GetBalance(ctx context.Context, employeeID, categoryID string, year int) (leave.Entitlement, error) {
	return l.entitlements.GetByKey(ctx, leave.EntitlementKey{EmployeeID: employeeID, CategoryID: categoryID, Year: year})
}

// Reserve implements leave.Ledger.
func (l *Ledger) Reserve(ctx context.Context, category leave.Category, employeeID string, year, days int) (bool, error) {
	if days <= 0 {
		return false, leave.ErrInvalidDateRange
	}
	key := leave.EntitlementKey{EmployeeID: employeeID, CategoryID: category.ID, Year: year}
	bounded := !category.IsUnbounded()

	ok, err := l.entitlements.AddPending(ctx, key, days, bounded)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if !bounded {
		// No record for an unbounded category means unlimited.
		return false, nil
	}

	current, err := l.entitlements.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, leave.ErrEntitlementNotFound) {
			slog.WarnContext(ctx, "no entitlement record for bounded category",
				"employee_id", employeeID,
				"leave_category_id", category.ID,
				"year", year,
			)
			return false, leave.ErrNoEntitlementRecord
		}
		return false, err
	}

	available := current.Available()
	if available < 0 {
		available = 0
	}
	return false, &leave.InsufficientBalanceError{Available: available, Requested: days}
}

// CommitUsed implements leave.Ledger.
func (l *Ledger) CommitUsed(ctx context.Context, category leave.Category, employeeID string, year, days int) error {
	key := leave.EntitlementKey{EmployeeID: employeeID, CategoryID: category.ID, Year: year}

	ok, err := l.entitlements.MovePendingToUsed(ctx, key, days)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return l.explainMiss(ctx, category, key, days, "commit")
}

// Release implements leave.Ledger.
func (l *Ledger) Release(ctx context.Context, category leave.Category, employeeID string, year, days int) error {
	key := leave.EntitlementKey{EmployeeID: employeeID, CategoryID: category.ID, Year: year}

	ok, err := l.entitlements.RemovePending(ctx, key, days)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return l.explainMiss(ctx, category, key, days, "release")
}

// explainMiss classifies a transition that matched no row.
func (l *Ledger) explainMiss(ctx context.Context, category leave.Category, key leave.EntitlementKey, days int, op string) error {
	current, err := l.entitlements.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, leave.ErrEntitlementNotFound) {
			if category.IsUnbounded() {
				return nil
			}
			return leave.ErrNoEntitlementRecord
		}
		return err
	}

	slog.ErrorContext(ctx, "ledger transition rejected",
		"op", op,
		"employee_id", key.EmployeeID,
		"leave_category_id", key.CategoryID,
		"year", key.Year,
		"days", days,
		"pending", current.Pending,
	)
	return fmt.Errorf("%s %d days with %d pending: %w", op, days, current.Pending, leave.ErrLedgerInconsistent)
}
