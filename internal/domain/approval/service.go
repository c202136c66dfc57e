package approval

import (
	"context"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type ApprovalService interface {
	leave.ApproverResolver

	ListApprovers(ctx context.Context, actorID, departmentID string) ([]AssignmentResponse, error)
	ListActionableRequests(ctx context.Context, approverID string) ([]leave.LeaveRequestResponse, error)
	Assign(ctx context.Context, req AssignApproverRequest) ([]AssignmentResponse, error)
	Unassign(ctx context.Context, req UnassignApproverRequest) ([]AssignmentResponse, error)
}
