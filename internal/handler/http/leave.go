package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/i18n"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	ListCategories(w http.ResponseWriter, r *http.Request)
	CreateCategory(w http.ResponseWriter, r *http.Request)
	UpdateCategory(w http.ResponseWriter, r *http.Request)
	ToggleCategory(w http.ResponseWriter, r *http.Request)

	ListMyEntitlements(w http.ResponseWriter, r *http.Request)
	ListEmployeeEntitlements(w http.ResponseWriter, r *http.Request)
	UpsertEntitlement(w http.ResponseWriter, r *http.Request)
	ProvisionEntitlements(w http.ResponseWriter, r *http.Request)

	ListMyRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	SubmitRequest(w http.ResponseWriter, r *http.Request)
	CheckRequest(w http.ResponseWriter, r *http.Request)
	DecideRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	requestService     leave.RequestService
	categoryService    leave.CategoryService
	entitlementService leave.EntitlementService
}

func NewLeaveHandler(requestService leave.RequestService, categoryService leave.CategoryService, entitlementService leave.EntitlementService) LeaveHandler {
	return &LeaveHandlerImpl{
		requestService:     requestService,
		categoryService:    categoryService,
		entitlementService: entitlementService,
	}
}

// ListCategories implements LeaveHandler.
func (l *LeaveHandlerImpl) ListCategories(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	categories, err := l.categoryService.List(r.Context(), actorID(r), includeInactive)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.List(w, categories)
}

// CreateCategory implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateCategoryRequest
	if !decodeJSON(w, r, &req, "CreateCategory") {
		return
	}
	req.ActorID = actorID(r)

	category, err := l.categoryService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, r, "leave_category_created", "Leave category created", category)
}

// UpdateCategory implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateCategoryRequest
	if !decodeJSON(w, r, &req, "UpdateCategory") {
		return
	}
	req.ActorID = actorID(r)
	req.ID = chi.URLParam(r, "id")
	if err := validateIDs("id", req.ID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	category, err := l.categoryService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, category)
}

// ToggleCategory implements LeaveHandler.
func (l *LeaveHandlerImpl) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validateIDs("id", id); err != nil {
		response.HandleError(w, r, err)
		return
	}

	category, err := l.categoryService.ToggleActive(r.Context(), actorID(r), id)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, category)
}

// ListMyEntitlements implements LeaveHandler.
func (l *LeaveHandlerImpl) ListMyEntitlements(w http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	entitlements, err := l.entitlementService.ListMine(r.Context(), actorID(r), year)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.List(w, entitlements)
}

// ListEmployeeEntitlements implements LeaveHandler.
func (l *LeaveHandlerImpl) ListEmployeeEntitlements(w http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if err := validateIDs("employee_id", employeeID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	entitlements, err := l.entitlementService.ListByEmployee(r.Context(), actorID(r), employeeID, year)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.List(w, entitlements)
}

// UpsertEntitlement implements LeaveHandler.
func (l *LeaveHandlerImpl) UpsertEntitlement(w http.ResponseWriter, r *http.Request) {
	var req leave.UpsertEntitlementRequest
	if !decodeJSON(w, r, &req, "UpsertEntitlement") {
		return
	}
	req.ActorID = actorID(r)
	if err := validateIDs("employee_id", req.EmployeeID, "leave_category_id", req.CategoryID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	entitlement, err := l.entitlementService.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, entitlement)
}

// ProvisionEntitlements implements LeaveHandler.
func (l *LeaveHandlerImpl) ProvisionEntitlements(w http.ResponseWriter, r *http.Request) {
	var req leave.ProvisionEntitlementsRequest
	if !decodeJSON(w, r, &req, "ProvisionEntitlements") {
		return
	}
	req.ActorID = actorID(r)

	result, err := l.entitlementService.Provision(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "entitlements_provisioned", "Entitlements provisioned", result)
}

// ListMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	year, err := optionalYearQuery(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	requests, err := l.requestService.ListByEmployee(r.Context(), actorID(r), year)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.List(w, requests)
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validateIDs("id", id); err != nil {
		response.HandleError(w, r, err)
		return
	}

	request, err := l.requestService.Get(r.Context(), actorID(r), id)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, request)
}

// SubmitRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.SubmitLeaveRequest
	if !decodeJSON(w, r, &req, "SubmitRequest") {
		return
	}
	// The owner always comes from the token.
	req.EmployeeID = actorID(r)
	if err := validateIDs("leave_category_id", req.CategoryID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	request, err := l.requestService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, r, "leave_request_submitted", "Leave request submitted", request)
}

// CheckRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CheckRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.SubmitLeaveRequest
	if !decodeJSON(w, r, &req, "CheckRequest") {
		return
	}
	req.EmployeeID = actorID(r)
	if err := validateIDs("leave_category_id", req.CategoryID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := l.requestService.Check(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	for i := range result.Warnings {
		warning := &result.Warnings[i]
		warning.Message = i18n.Translate(r.Context(), warning.Code, warning.Code, warning.Params)
	}

	response.Success(w, result)
}

// DecideRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) DecideRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.DecideLeaveRequest
	if !decodeJSON(w, r, &req, "DecideRequest") {
		return
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ApproverID = actorID(r)
	if err := validateIDs("id", req.RequestID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	request, err := l.requestService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "leave_request_decided", "Leave request decided", request)
}
