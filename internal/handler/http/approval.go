package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ApprovalHandler interface {
	ListActionable(w http.ResponseWriter, r *http.Request)
	ListApprovers(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
}

type ApprovalHandlerImpl struct {
	approvalService approval.ApprovalService
}

func NewApprovalHandler(approvalService approval.ApprovalService) ApprovalHandler {
	return &ApprovalHandlerImpl{approvalService: approvalService}
}

// ListActionable implements ApprovalHandler.
func (a *ApprovalHandlerImpl) ListActionable(w http.ResponseWriter, r *http.Request) {
	requests, err := a.approvalService.ListActionableRequests(r.Context(), actorID(r))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.List(w, requests)
}

// ListApprovers implements ApprovalHandler.
func (a *ApprovalHandlerImpl) ListApprovers(w http.ResponseWriter, r *http.Request) {
	departmentID := chi.URLParam(r, "departmentID")
	if err := validateIDs("department_id", departmentID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	chain, err := a.approvalService.ListApprovers(r.Context(), actorID(r), departmentID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.List(w, chain)
}

// Assign implements ApprovalHandler.
func (a *ApprovalHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req approval.AssignApproverRequest
	if !decodeJSON(w, r, &req, "Assign") {
		return
	}
	req.ActorID = actorID(r)
	req.DepartmentID = chi.URLParam(r, "departmentID")
	if err := validateIDs("department_id", req.DepartmentID, "approver_id", req.ApproverID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	chain, err := a.approvalService.Assign(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, r, "approver_assigned", "Approver assigned", chain)
}

// Unassign implements ApprovalHandler.
func (a *ApprovalHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	req := approval.UnassignApproverRequest{
		ActorID:      actorID(r),
		DepartmentID: chi.URLParam(r, "departmentID"),
		ApproverID:   chi.URLParam(r, "approverID"),
	}
	if err := validateIDs("department_id", req.DepartmentID, "approver_id", req.ApproverID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	chain, err := a.approvalService.Unassign(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.List(w, chain)
}
