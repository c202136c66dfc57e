package approval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type ApprovalServiceImpl struct {
	transactor database.Transactor
	approval.AssignmentRepository
	leave.RequestRepository
	employee.EmployeeRepository
	authorizer rbac.Authorizer
}

func NewApprovalService(
	transactor database.Transactor,
	assignmentRepository approval.AssignmentRepository,
	requestRepository leave.RequestRepository,
	employeeRepository employee.EmployeeRepository,
	authorizer rbac.Authorizer,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		transactor:           transactor,
		AssignmentRepository: assignmentRepository,
		RequestRepository:    requestRepository,
		EmployeeRepository:   employeeRepository,
		authorizer:           authorizer,
	}
}

// IsApprover implements leave.ApproverResolver.
func (s *ApprovalServiceImpl) IsApprover(ctx context.Context, departmentID, approverID string) (bool, error) {
	return s.AssignmentRepository.Exists(ctx, departmentID, approverID)
}

// ListApprovers implements approval.ApprovalService.
func (s *ApprovalServiceImpl) ListApprovers(ctx context.Context, actorID, departmentID string) ([]approval.AssignmentResponse, error) {
	actor, err := s.authorizer.AuthorizeEmployee(ctx, actorID, rbac.PermissionLeaveViewOwn)
	if err != nil {
		return nil, err
	}

	// Members see their own chain; other chains need approval.manage.
	if !actor.InDepartment(departmentID) {
		if _, err := s.authorizer.AuthorizeEmployee(ctx, actorID, rbac.PermissionApprovalManage); err != nil {
			return nil, err
		}
		if err := s.AssignmentRepository.CheckDepartment(ctx, actor.OrganizationID, departmentID); err != nil {
			return nil, err
		}
	}

	return s.listApprovers(ctx, departmentID)
}

func (s *ApprovalServiceImpl) listApprovers(ctx context.Context, departmentID string) ([]approval.AssignmentResponse, error) {
	assignments, err := s.AssignmentRepository.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return approval.NewAssignmentResponses(assignments), nil
}

// ListActionableRequests implements approval.ApprovalService. Any rank in a
// chain may act on the department's pending requests.
func (s *ApprovalServiceImpl) ListActionableRequests(ctx context.Context, approverID string) ([]leave.LeaveRequestResponse, error) {
	if _, err := s.authorizer.AuthorizeEmployee(ctx, approverID, rbac.PermissionLeaveApprove); err != nil {
		return nil, err
	}

	departmentIDs, err := s.AssignmentRepository.ListDepartmentsByApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if len(departmentIDs) == 0 {
		return []leave.LeaveRequestResponse{}, nil
	}

	requests, err := s.RequestRepository.ListPendingByDepartments(ctx, departmentIDs, approverID)
	if err != nil {
		return nil, err
	}
	return leave.NewLeaveRequestResponses(requests), nil
}

// Assign implements approval.ApprovalService.
func (s *ApprovalServiceImpl) Assign(ctx context.Context, req approval.AssignApproverRequest) ([]approval.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.authorizer.AuthorizeEmployee(ctx, req.ActorID, rbac.PermissionApprovalManage)
	if err != nil {
		return nil, err
	}

	approver, err := s.EmployeeRepository.GetByID(ctx, req.ApproverID)
	if err != nil {
		return nil, err
	}
	if approver.OrganizationID != actor.OrganizationID {
		return nil, employee.ErrNotInOrganization
	}
	if !approver.IsActive() {
		return nil, employee.ErrEmployeeInactive
	}

	var chain []approval.AssignmentResponse
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.AssignmentRepository.LockDepartment(ctx, actor.OrganizationID, req.DepartmentID); err != nil {
			return err
		}

		exists, err := s.AssignmentRepository.Exists(ctx, req.DepartmentID, req.ApproverID)
		if err != nil {
			return err
		}
		if exists {
			return approval.ErrDuplicateApprover
		}

		current, err := s.AssignmentRepository.ListByDepartment(ctx, req.DepartmentID)
		if err != nil {
			return err
		}

		order := req.Order
		if order == 0 {
			order = len(current) + 1
		}
		if order > len(current)+1 {
			var errs validator.ValidationErrors
			errs.Add("order", fmt.Sprintf("order must be between 1 and %d", len(current)+1))
			return errs
		}

		if _, err := s.AssignmentRepository.Insert(ctx, req.DepartmentID, req.ApproverID, order); err != nil {
			return err
		}

		chain, err = s.listApprovers(ctx, req.DepartmentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "approver assigned",
		"department_id", req.DepartmentID,
		"approver_id", req.ApproverID,
		"chain_length", len(chain),
		"actor_id", actor.ID,
	)
	return chain, nil
}

// Unassign implements approval.ApprovalService.
func (s *ApprovalServiceImpl) Unassign(ctx context.Context, req approval.UnassignApproverRequest) ([]approval.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.authorizer.AuthorizeEmployee(ctx, req.ActorID, rbac.PermissionApprovalManage)
	if err != nil {
		return nil, err
	}

	var chain []approval.AssignmentResponse
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.AssignmentRepository.LockDepartment(ctx, actor.OrganizationID, req.DepartmentID); err != nil {
			return err
		}
		if err := s.AssignmentRepository.Delete(ctx, req.DepartmentID, req.ApproverID); err != nil {
			return err
		}

		var err error
		chain, err = s.listApprovers(ctx, req.DepartmentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "approver unassigned",
		"department_id", req.DepartmentID,
		"approver_id", req.ApproverID,
		"chain_length", len(chain),
		"actor_id", actor.ID,
	)
	return chain, nil
}
