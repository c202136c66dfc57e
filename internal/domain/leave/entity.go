package leave

import (
	"time"
)

// Category is a leave type configured per organization.
type Category struct {
	ID             string
	OrganizationID string
	Code           string
	Name           string
	Description    *string

	// nil means unbounded
	DefaultAllowance *int
	MaxPaidDays      *int

	RequiresSupportingDocument bool
	RequiresAdvanceNotice      bool
	NoticeDays                 int

	Color    *string
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsUnbounded reports whether the category never gates a reservation.
func (c Category) IsUnbounded() bool {
	return c.DefaultAllowance == nil
}

// EntitlementKey identifies one ledger row.
type EntitlementKey struct {
	EmployeeID string
	CategoryID string
	Year       int
}

// Entitlement is the balance of one employee for one category and year.
type Entitlement struct {
	ID         string
	EmployeeID string
	CategoryID string
	Year       int

	Granted     int
	CarriedOver int
	Used        int
	Pending     int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	CategoryCode *string
	CategoryName *string
}

func (e Entitlement) Key() EntitlementKey {
	return EntitlementKey{EmployeeID: e.EmployeeID, CategoryID: e.CategoryID, Year: e.Year}
}

// Available is granted + carried over - used - pending.
func (e Entitlement) Available() int {
	return e.Granted + e.CarriedOver - e.Used - e.Pending
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// IsTerminal reports whether no further transition is defined.
func (s RequestStatus) IsTerminal() bool {
	return s != RequestStatusPending
}

// Request is a single leave request.
type Request struct {
	ID         string
	EmployeeID string
	CategoryID string

	StartDate time.Time
	EndDate   time.Time
	TotalDays int

	// Reserved is set when submission booked the days as pending on a
	// ledger row. Decisions only move pending days of reserved requests.
	Reserved bool

	Reason      string
	DocumentRef *string

	Status       RequestStatus
	DecidedBy    *string
	DecidedAt    *time.Time
	DecisionNote *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
	CategoryName *string
}

// Year is the ledger year the request is booked against.
func (r Request) Year() int {
	return r.StartDate.Year()
}

func (r Request) EntitlementKey() EntitlementKey {
	return EntitlementKey{EmployeeID: r.EmployeeID, CategoryID: r.CategoryID, Year: r.Year()}
}

// InclusiveDays counts calendar days from start to end, both included.
// The result is <= 0 when end is before start.
func InclusiveDays(start, end time.Time) int {
	s := civilDate(start)
	e := civilDate(end)
	return int((e.Unix()-s.Unix())/secondsPerDay) + 1
}

const secondsPerDay = 24 * 60 * 60

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
