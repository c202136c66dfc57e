package leave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
)

type RequestServiceImpl struct {
	transactor database.Transactor
	leave.CategoryRepository
	leave.RequestRepository
	employee.EmployeeRepository
	ledger     leave.Ledger
	approvers  leave.ApproverResolver
	authorizer rbac.Authorizer
	now        func() time.Time
}

func NewRequestService(
	transactor database.Transactor,
	categoryRepository leave.CategoryRepository,
	requestRepository leave.RequestRepository,
	employeeRepository employee.EmployeeRepository,
	ledger leave.Ledger,
	approvers leave.ApproverResolver,
	authorizer rbac.Authorizer,
) *RequestServiceImpl {
	return &RequestServiceImpl{
		transactor:         transactor,
		CategoryRepository: categoryRepository,
		RequestRepository:  requestRepository,
		EmployeeRepository: employeeRepository,
		ledger:             ledger,
		approvers:          approvers,
		authorizer:         authorizer,
		now:                time.Now,
	}
}

// Submit implements leave.RequestService.
func (s *RequestServiceImpl) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, end := req.Dates()
	totalDays := leave.InclusiveDays(start, end)
	if totalDays <= 0 {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidDateRange
	}

	emp, err := s.authorizer.AuthorizeEmployee(ctx, req.EmployeeID, rbac.PermissionLeaveCreate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	category, err := s.activeCategory(ctx, emp, req.CategoryID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	year := start.Year()

	var created leave.Request
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		reserved, err := s.ledger.Reserve(ctx, category, emp.ID, year, totalDays)
		if err != nil {
			return err
		}

		created, err = s.RequestRepository.Create(ctx, leave.Request{
			EmployeeID:  emp.ID,
			CategoryID:  category.ID,
			StartDate:   start,
			EndDate:     end,
			TotalDays:   totalDays,
			Reserved:    reserved,
			Reason:      req.Reason,
			DocumentRef: req.DocumentRef,
			Status:      leave.RequestStatusPending,
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.InfoContext(ctx, "leave request submitted",
		"leave_request_id", created.ID,
		"employee_id", emp.ID,
		"leave_category", category.Code,
		"year", year,
		"total_days", totalDays,
	)

	created.EmployeeName = &emp.FullName
	created.CategoryName = &category.Name
	return leave.NewLeaveRequestResponse(created), nil
}

// Decide implements leave.RequestService.
func (s *RequestServiceImpl) Decide(ctx context.Context, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	status := leave.RequestStatus(req.Decision)

	var decided leave.Request
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.RequestRepository.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}
		if request.Status.IsTerminal() {
			return leave.ErrAlreadyDecided
		}
		if request.EmployeeID == req.ApproverID {
			return leave.ErrSelfApproval
		}

		approver, err := s.authorizer.AuthorizeEmployee(ctx, req.ApproverID, rbac.PermissionLeaveApprove)
		if err != nil {
			return err
		}

		owner, err := s.EmployeeRepository.GetByID(ctx, request.EmployeeID)
		if err != nil {
			return err
		}
		if err := s.checkRouting(ctx, approver, owner); err != nil {
			return err
		}

		category, err := s.CategoryRepository.GetByID(ctx, request.CategoryID)
		if err != nil {
			return err
		}

		decided, err = s.RequestRepository.UpdateDecision(ctx, request.ID, leave.Decision{
			Status:    status,
			DecidedBy: approver.ID,
			DecidedAt: s.now(),
			Note:      req.Note,
		})
		if err != nil {
			return err
		}
		decided.EmployeeName = &owner.FullName
		decided.CategoryName = &category.Name

		// The category's allowance mode may have changed since submission;
		// only the days actually booked are moved.
		if !request.Reserved {
			return nil
		}
		switch status {
		case leave.RequestStatusApproved:
			err = s.ledger.CommitUsed(ctx, category, request.EmployeeID, request.Year(), request.TotalDays)
		case leave.RequestStatusRejected:
			err = s.ledger.Release(ctx, category, request.EmployeeID, request.Year(), request.TotalDays)
		}
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.InfoContext(ctx, "leave request decided",
		"leave_request_id", decided.ID,
		"status", decided.Status,
		"decided_by", req.ApproverID,
		"total_days", decided.TotalDays,
	)

	return leave.NewLeaveRequestResponse(decided), nil
}

// checkRouting requires the approver to sit in the chain of the owner's department.
func (s *RequestServiceImpl) checkRouting(ctx context.Context, approver, owner employee.Employee) error {
	if approver.OrganizationID != owner.OrganizationID {
		return leave.ErrNotAuthorized
	}
	if owner.DepartmentID == nil {
		return employee.ErrDepartmentRequired
	}

	ok, err := s.approvers.IsApprover(ctx, *owner.DepartmentID, approver.ID)
	if err != nil {
		return err
	}
	if !ok {
		return leave.ErrNotAuthorized
	}
	return nil
}

// Check implements leave.RequestService. It never mutates state and its
// warnings do not block Submit.
func (s *RequestServiceImpl) Check(ctx context.Context, req leave.SubmitLeaveRequest) (leave.EligibilityResult, error) {
	if err := req.Validate(); err != nil {
		return leave.EligibilityResult{}, err
	}

	start, end := req.Dates()
	totalDays := leave.InclusiveDays(start, end)
	if totalDays <= 0 {
		return leave.EligibilityResult{}, leave.ErrInvalidDateRange
	}

	emp, err := s.authorizer.AuthorizeEmployee(ctx, req.EmployeeID, rbac.PermissionLeaveCreate)
	if err != nil {
		return leave.EligibilityResult{}, err
	}

	category, err := s.activeCategory(ctx, emp, req.CategoryID)
	if err != nil {
		return leave.EligibilityResult{}, err
	}

	result := leave.EligibilityResult{
		TotalDays: totalDays,
		Year:      start.Year(),
		CanSubmit: true,
		Warnings:  make([]leave.Warning, 0),
	}

	if category.RequiresAdvanceNotice {
		today := s.now()
		noticeGiven := leave.InclusiveDays(today, start) - 1
		if noticeGiven < category.NoticeDays {
			result.Warnings = append(result.Warnings, leave.Warning{
				Code:   leave.WarningAdvanceNotice,
				Params: map[string]any{"Days": category.NoticeDays},
			})
		}
	}

	if category.RequiresSupportingDocument && (req.DocumentRef == nil || *req.DocumentRef == "") {
		result.Warnings = append(result.Warnings, leave.Warning{Code: leave.WarningSupportingDocument})
	}

	balance, err := s.ledger.GetBalance(ctx, emp.ID, category.ID, result.Year)
	switch {
	case err == nil:
		available := balance.Available()
		result.Available = &available
		if category.IsUnbounded() {
			result.Unlimited = true
		} else if available < totalDays {
			result.CanSubmit = false
			result.Warnings = append(result.Warnings, leave.Warning{
				Code:   leave.WarningInsufficient,
				Params: map[string]any{"Remaining": max(available, 0)},
			})
		}
	case errors.Is(err, leave.ErrEntitlementNotFound):
		if category.IsUnbounded() {
			result.Unlimited = true
		} else {
			result.CanSubmit = false
			result.Warnings = append(result.Warnings, leave.Warning{Code: leave.WarningNoEntitlement})
		}
	default:
		return leave.EligibilityResult{}, err
	}

	return result, nil
}

// ListByEmployee implements leave.RequestService.
func (s *RequestServiceImpl) ListByEmployee(ctx context.Context, employeeID string, year *int) ([]leave.LeaveRequestResponse, error) {
	if _, err := s.authorizer.AuthorizeEmployee(ctx, employeeID, rbac.PermissionLeaveViewOwn); err != nil {
		return nil, err
	}

	requests, err := s.RequestRepository.ListByEmployee(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	return leave.NewLeaveRequestResponses(requests), nil
}

// Get implements leave.RequestService. Owners read their own requests;
// anyone else needs leave.view_all in the same organization.
func (s *RequestServiceImpl) Get(ctx context.Context, actorID, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := s.RequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if request.EmployeeID == actorID {
		if _, err := s.authorizer.AuthorizeEmployee(ctx, actorID, rbac.PermissionLeaveViewOwn); err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.NewLeaveRequestResponse(request), nil
	}

	actor, err := s.authorizer.AuthorizeEmployee(ctx, actorID, rbac.PermissionLeaveViewAll)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	owner, err := s.EmployeeRepository.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if owner.OrganizationID != actor.OrganizationID {
		// Requests of other organizations do not exist for this actor.
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	return leave.NewLeaveRequestResponse(request), nil
}

func (s *RequestServiceImpl) activeCategory(ctx context.Context, emp employee.Employee, categoryID string) (leave.Category, error) {
	category, err := s.CategoryRepository.GetByID(ctx, categoryID)
	if err != nil {
		return leave.Category{}, err
	}
	if category.OrganizationID != emp.OrganizationID {
		return leave.Category{}, leave.ErrCategoryNotFound
	}
	if !category.IsActive {
		return leave.Category{}, leave.ErrCategoryInactive
	}
	return category, nil
}
