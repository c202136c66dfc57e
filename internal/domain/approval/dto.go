package approval

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type AssignApproverRequest struct {
	ActorID      string `json:"-"`
	DepartmentID string `json:"-"`
	ApproverID   string `json:"approver_id"`
	// Order 0 appends to the end of the chain.
	Order int `json:"order"`
}

func (r *AssignApproverRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DepartmentID) {
		errs.Add("department_id", "department_id is required")
	}
	if validator.IsEmpty(r.ApproverID) {
		errs.Add("approver_id", "approver_id is required")
	}
	if r.Order < 0 {
		errs.Add("order", "order must not be negative")
	}

	return errs.Err()
}

type UnassignApproverRequest struct {
	ActorID      string
	DepartmentID string
	ApproverID   string
}

func (r *UnassignApproverRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DepartmentID) {
		errs.Add("department_id", "department_id is required")
	}
	if validator.IsEmpty(r.ApproverID) {
		errs.Add("approver_id", "approver_id is required")
	}

	return errs.Err()
}

type AssignmentResponse struct {
	DepartmentID string    `json:"department_id"`
	ApproverID   string    `json:"approver_id"`
	ApproverName *string   `json:"approver_name,omitempty"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewAssignmentResponses(assignments []Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, AssignmentResponse{
			DepartmentID: a.DepartmentID,
			ApproverID:   a.ApproverID,
			ApproverName: a.ApproverName,
			Order:        a.Order,
			CreatedAt:    a.CreatedAt,
		})
	}
	return responses
}
