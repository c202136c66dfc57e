package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

// ==========================================
// LEAVE CATEGORY
// ==========================================

type CreateCategoryRequest struct {
	ActorID                    string  `json:"-"`
	Code                       string  `json:"code"`
	Name                       string  `json:"name"`
	Description                *string `json:"description,omitempty"`
	DefaultAllowance           *int    `json:"default_allowance"`
	MaxPaidDays                *int    `json:"max_paid_days"`
	RequiresSupportingDocument bool    `json:"requires_supporting_document"`
	RequiresAdvanceNotice      bool    `json:"requires_advance_notice"`
	NoticeDays                 int     `json:"notice_days"`
	Color                      *string `json:"color,omitempty"`
}

func (r *CreateCategoryRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidCategoryCode(r.Code) {
		errs.Add("code", "code must be 2-32 upper case letters, digits or underscores")
	}

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	validateAllowances(&errs, r.DefaultAllowance, r.MaxPaidDays)
	validateNotice(&errs, r.RequiresAdvanceNotice, r.NoticeDays)

	if r.Color != nil && !validator.IsValidHexColor(*r.Color) {
		errs.Add("color", "color must be a hex value like #4CAF50")
	}

	return errs.Err()
}

type UpdateCategoryRequest struct {
	ActorID                    string  `json:"-"`
	ID                         string  `json:"-"`
	Name                       *string `json:"name,omitempty"`
	Description                *string `json:"description,omitempty"`
	DefaultAllowance           *int    `json:"default_allowance,omitempty"`
	ClearDefaultAllowance      bool    `json:"clear_default_allowance,omitempty"`
	MaxPaidDays                *int    `json:"max_paid_days,omitempty"`
	ClearMaxPaidDays           bool    `json:"clear_max_paid_days,omitempty"`
	RequiresSupportingDocument *bool   `json:"requires_supporting_document,omitempty"`
	RequiresAdvanceNotice      *bool   `json:"requires_advance_notice,omitempty"`
	NoticeDays                 *int    `json:"notice_days,omitempty"`
	Color                      *string `json:"color,omitempty"`
}

func (r *UpdateCategoryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		}
		if len(*r.Name) > 255 {
			errs.Add("name", "name must not exceed 255 characters")
		}
	}

	if r.ClearDefaultAllowance && r.DefaultAllowance != nil {
		errs.Add("default_allowance", "default_allowance cannot be set and cleared at once")
	}
	if r.ClearMaxPaidDays && r.MaxPaidDays != nil {
		errs.Add("max_paid_days", "max_paid_days cannot be set and cleared at once")
	}
	validateAllowances(&errs, r.DefaultAllowance, r.MaxPaidDays)

	if r.NoticeDays != nil && *r.NoticeDays < 0 {
		errs.Add("notice_days", "notice_days must not be negative")
	}

	if r.Color != nil && !validator.IsValidHexColor(*r.Color) {
		errs.Add("color", "color must be a hex value like #4CAF50")
	}

	return errs.Err()
}

// Apply copies the provided fields onto c.
func (r *UpdateCategoryRequest) Apply(c *Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	if r.ClearDefaultAllowance {
		c.DefaultAllowance = nil
	} else if r.DefaultAllowance != nil {
		c.DefaultAllowance = r.DefaultAllowance
	}
	if r.ClearMaxPaidDays {
		c.MaxPaidDays = nil
	} else if r.MaxPaidDays != nil {
		c.MaxPaidDays = r.MaxPaidDays
	}
	if r.RequiresSupportingDocument != nil {
		c.RequiresSupportingDocument = *r.RequiresSupportingDocument
	}
	if r.RequiresAdvanceNotice != nil {
		c.RequiresAdvanceNotice = *r.RequiresAdvanceNotice
	}
	if r.NoticeDays != nil {
		c.NoticeDays = *r.NoticeDays
	}
	if !c.RequiresAdvanceNotice {
		c.NoticeDays = 0
	}
	if r.Color != nil {
		c.Color = r.Color
	}
}

func validateAllowances(errs *validator.ValidationErrors, defaultAllowance, maxPaidDays *int) {
	if defaultAllowance != nil && *defaultAllowance < 0 {
		errs.Add("default_allowance", "default_allowance must not be negative")
	}
	if maxPaidDays != nil && *maxPaidDays < 0 {
		errs.Add("max_paid_days", "max_paid_days must not be negative")
	}
}

func validateNotice(errs *validator.ValidationErrors, requiresNotice bool, noticeDays int) {
	if noticeDays < 0 {
		errs.Add("notice_days", "notice_days must not be negative")
	}
	if requiresNotice && noticeDays == 0 {
		errs.Add("notice_days", "notice_days must be positive when advance notice is required")
	}
}

type CategoryResponse struct {
	ID                         string    `json:"id"`
	Code                       string    `json:"code"`
	Name                       string    `json:"name"`
	Description                *string   `json:"description,omitempty"`
	DefaultAllowance           *int      `json:"default_allowance"`
	MaxPaidDays                *int      `json:"max_paid_days"`
	Unbounded                  bool      `json:"unbounded"`
	RequiresSupportingDocument bool      `json:"requires_supporting_document"`
	RequiresAdvanceNotice      bool      `json:"requires_advance_notice"`
	NoticeDays                 int       `json:"notice_days"`
	Color                      *string   `json:"color,omitempty"`
	IsActive                   bool      `json:"is_active"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

func NewCategoryResponse(c Category) CategoryResponse {
	return CategoryResponse{
		ID:                         c.ID,
		Code:                       c.Code,
		Name:                       c.Name,
		Description:                c.Description,
		DefaultAllowance:           c.DefaultAllowance,
		MaxPaidDays:                c.MaxPaidDays,
		Unbounded:                  c.IsUnbounded(),
		RequiresSupportingDocument: c.RequiresSupportingDocument,
		RequiresAdvanceNotice:      c.RequiresAdvanceNotice,
		NoticeDays:                 c.NoticeDays,
		Color:                      c.Color,
		IsActive:                   c.IsActive,
		CreatedAt:                  c.CreatedAt,
		UpdatedAt:                  c.UpdatedAt,
	}
}

// ==========================================
// ENTITLEMENT
// ==========================================

type UpsertEntitlementRequest struct {
	ActorID     string `json:"-"`
	EmployeeID  string `json:"employee_id"`
	CategoryID  string `json:"leave_category_id"`
	Year        int    `json:"year"`
	Granted     int    `json:"granted"`
	CarriedOver int    `json:"carried_over"`
}

func (r *UpsertEntitlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.CategoryID) {
		errs.Add("leave_category_id", "leave_category_id is required")
	}
	if !validator.IsValidYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	if r.Granted < 0 {
		errs.Add("granted", "granted must not be negative")
	}
	if r.CarriedOver < 0 {
		errs.Add("carried_over", "carried_over must not be negative")
	}

	return errs.Err()
}

type ProvisionEntitlementsRequest struct {
	ActorID string `json:"-"`
	Year    int    `json:"year"`
}

func (r *ProvisionEntitlementsRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	return errs.Err()
}

type ProvisionEntitlementsResponse struct {
	Year      int `json:"year"`
	Employees int `json:"employees"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
}

type EntitlementResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	CategoryID   string    `json:"leave_category_id"`
	CategoryCode *string   `json:"leave_category_code,omitempty"`
	CategoryName *string   `json:"leave_category_name,omitempty"`
	Year         int       `json:"year"`
	Granted      int       `json:"granted"`
	CarriedOver  int       `json:"carried_over"`
	Used         int       `json:"used"`
	Pending      int       `json:"pending"`
	Available    int       `json:"available"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewEntitlementResponse(e Entitlement) EntitlementResponse {
	return EntitlementResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		CategoryID:   e.CategoryID,
		CategoryCode: e.CategoryCode,
		CategoryName: e.CategoryName,
		Year:         e.Year,
		Granted:      e.Granted,
		CarriedOver:  e.CarriedOver,
		Used:         e.Used,
		Pending:      e.Pending,
		Available:    e.Available(),
		UpdatedAt:    e.UpdatedAt,
	}
}

// ==========================================
// LEAVE REQUEST
// ==========================================

type SubmitLeaveRequest struct {
	EmployeeID  string  `json:"-"`
	CategoryID  string  `json:"leave_category_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Reason      string  `json:"reason"`
	DocumentRef *string `json:"document_ref,omitempty"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.CategoryID) {
		errs.Add("leave_category_id", "leave_category_id is required")
	}
	if start, ok := validator.IsValidDate(r.StartDate); !ok {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	} else if !validator.IsValidYear(start.Year()) {
		errs.Add("start_date", "start_date year is out of range")
	}
	if end, ok := validator.IsValidDate(r.EndDate); !ok {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	} else if !validator.IsValidYear(end.Year()) {
		errs.Add("end_date", "end_date year is out of range")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}
	if r.DocumentRef != nil && len(*r.DocumentRef) > 2048 {
		errs.Add("document_ref", "document_ref must not exceed 2048 characters")
	}

	return errs.Err()
}

// Dates parses the validated start and end dates.
func (r *SubmitLeaveRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type DecideLeaveRequest struct {
	RequestID  string  `json:"-"`
	ApproverID string  `json:"-"`
	Decision   string  `json:"decision"`
	Note       *string `json:"note,omitempty"`
}

func (r *DecideLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs.Add("request_id", "request_id is required")
	}
	if validator.IsEmpty(r.ApproverID) {
		errs.Add("approver_id", "approver_id is required")
	}
	if !validator.IsInSlice(r.Decision, []string{string(RequestStatusApproved), string(RequestStatusRejected)}) {
		errs.Add("decision", "decision must be 'approved' or 'rejected'")
	}
	if r.Note != nil && len(*r.Note) > 500 {
		errs.Add("note", "note must not exceed 500 characters")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName *string    `json:"employee_name,omitempty"`
	CategoryID   string     `json:"leave_category_id"`
	CategoryName *string    `json:"leave_category_name,omitempty"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	TotalDays    int        `json:"total_days"`
	Reason       string     `json:"reason"`
	DocumentRef  *string    `json:"document_ref,omitempty"`
	Status       string     `json:"status"`
	DecidedBy    *string    `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	DecisionNote *string    `json:"decision_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewLeaveRequestResponse(r Request) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		StartDate:    r.StartDate.Format(validator.DateLayout),
		EndDate:      r.EndDate.Format(validator.DateLayout),
		TotalDays:    r.TotalDays,
		Reason:       r.Reason,
		DocumentRef:  r.DocumentRef,
		Status:       string(r.Status),
		DecidedBy:    r.DecidedBy,
		DecidedAt:    r.DecidedAt,
		DecisionNote: r.DecisionNote,
		CreatedAt:    r.CreatedAt,
	}
}

func NewLeaveRequestResponses(requests []Request) []LeaveRequestResponse {
	responses := make([]LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, NewLeaveRequestResponse(r))
	}
	return responses
}

// Warning codes returned by the pre-submit check. They are message ids in
// the locale files.
const (
	WarningAdvanceNotice      = "advance_notice_required"
	WarningSupportingDocument = "supporting_document_required"
	WarningInsufficient       = "insufficient_balance"
	WarningNoEntitlement      = "no_entitlement_record"
)

type Warning struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// EligibilityResult is advisory. Submit does not enforce notice or document
// requirements.
type EligibilityResult struct {
	TotalDays int       `json:"total_days"`
	Year      int       `json:"year"`
	Unlimited bool      `json:"unlimited"`
	Available *int      `json:"available,omitempty"`
	CanSubmit bool      `json:"can_submit"`
	Warnings  []Warning `json:"warnings"`
}
