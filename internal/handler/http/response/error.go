package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	// Leave domain errors
	{leave.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE"},
	{leave.ErrNoEntitlementRecord, http.StatusConflict, "NO_ENTITLEMENT_RECORD"},
	{leave.ErrAlreadyDecided, http.StatusConflict, "ALREADY_DECIDED"},
	{leave.ErrBalanceBelowCommitted, http.StatusConflict, "BALANCE_BELOW_COMMITTED"},
	{leave.ErrNotAuthorized, http.StatusForbidden, "NOT_AUTHORIZED"},
	{leave.ErrSelfApproval, http.StatusForbidden, "SELF_APPROVAL"},
	{leave.ErrCategoryInactive, http.StatusBadRequest, "CATEGORY_INACTIVE"},
	{leave.ErrDuplicateCategoryCode, http.StatusConflict, "DUPLICATE_CATEGORY_CODE"},

	// Approval domain errors
	{approval.ErrDuplicateApprover, http.StatusConflict, "DUPLICATE_APPROVER"},

	// RBAC domain errors
	{rbac.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
	{rbac.ErrSelfLockout, http.StatusConflict, "SELF_LOCKOUT"},
	{rbac.ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},

	// Employee domain errors
	{employee.ErrEmployeeInactive, http.StatusForbidden, "EMPLOYEE_INACTIVE"},
	{employee.ErrNotInOrganization, http.StatusForbidden, "NOT_IN_ORGANIZATION"},
	{employee.ErrDepartmentRequired, http.StatusConflict, "DEPARTMENT_REQUIRED"},
}

// notFoundMessages maps not-found errors to their message ids.
var notFoundMessages = []struct {
	err       error
	messageID string
}{
	{leave.ErrLeaveRequestNotFound, "LEAVE_REQUEST_NOT_FOUND"},
	{leave.ErrCategoryNotFound, "CATEGORY_NOT_FOUND"},
	{leave.ErrEntitlementNotFound, "ENTITLEMENT_NOT_FOUND"},
	{employee.ErrEmployeeNotFound, "EMPLOYEE_NOT_FOUND"},
	{approval.ErrDepartmentNotFound, "DEPARTMENT_NOT_FOUND"},
	{approval.ErrAssignmentNotFound, "ASSIGNMENT_NOT_FOUND"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, r, validationErrs.ToMap())
		return
	}

	var insufficient *leave.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		writeError(w, r, http.StatusConflict, "INSUFFICIENT_BALANCE", "INSUFFICIENT_BALANCE", insufficient.Error(),
			map[string]any{"remaining": insufficient.Available, "requested": insufficient.Requested},
			map[string]any{"Remaining": insufficient.Available},
		)
		return
	}

	for _, nf := range notFoundMessages {
		if errors.Is(err, nf.err) {
			NotFound(w, r, nf.messageID, nf.err.Error())
			return
		}
	}

	if errors.Is(err, leave.ErrLedgerInconsistent) {
		slog.ErrorContext(r.Context(), "ledger inconsistent", "error", err, "path", r.URL.Path)
		Conflict(w, r, "LEDGER_INCONSISTENT", err.Error())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			Error(w, r, m.status, m.code, m.err.Error(), nil)
			return
		}
	}

	// Default
	slog.ErrorContext(r.Context(), "unhandled error", "error", err, "method", r.Method, "path", r.URL.Path)
	InternalServerError(w, r)
}
