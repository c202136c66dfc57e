package leave

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
)

const (
	testOrgID   = "org-1"
	otherOrgID  = "org-2"
	testDeptID  = "dept-d"
	testYear    = 2025
	ownerID     = "emp-e"
	approverAID = "emp-a"
	approverBID = "emp-b"
	outsiderID  = "emp-c"
	hrID        = "emp-hr"
)

type testEnv struct {
	store      *memStore
	authorizer *memAuthorizer
	approvers  *memApprovers
	ledger     *Ledger
	requests   *RequestServiceImpl
	categories *CategoryServiceImpl
	entitle    *EntitlementServiceImpl

	vacation leave.Category
	sick     leave.Category
}

func intPtr(i int) *int { return &i }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	dept := testDeptID
	for _, e := range []employee.Employee{
		{ID: ownerID, OrganizationID: testOrgID, DepartmentID: &dept, FullName: "Employee E", Role: string(rbac.RoleManager)},
		{ID: approverAID, OrganizationID: testOrgID, DepartmentID: &dept, FullName: "Approver A", Role: string(rbac.RoleManager)},
		{ID: approverBID, OrganizationID: testOrgID, FullName: "Approver B", Role: string(rbac.RoleManager)},
		{ID: outsiderID, OrganizationID: testOrgID, FullName: "Manager C", Role: string(rbac.RoleManager)},
		{ID: hrID, OrganizationID: testOrgID, FullName: "HR", Role: string(rbac.RoleHR)},
	} {
		e.Status = employee.EmploymentStatusActive
		store.employees[e.ID] = e
	}

	vacation := leave.Category{
		ID: "cat-vacation", OrganizationID: testOrgID, Code: "VACATION", Name: "Vacation",
		DefaultAllowance: intPtr(6), MaxPaidDays: intPtr(6),
		RequiresAdvanceNotice: true, NoticeDays: 7, IsActive: true,
	}
	sick := leave.Category{
		ID: "cat-sick", OrganizationID: testOrgID, Code: "SICK", Name: "Sick",
		MaxPaidDays: intPtr(30), RequiresSupportingDocument: true, IsActive: true,
	}
	store.categories[vacation.ID] = vacation
	store.categories[sick.ID] = sick

	authorizer := &memAuthorizer{store: store}
	approvers := &memApprovers{chains: map[string][]string{testDeptID: {approverAID, approverBID}}}
	transactor := &memTransactor{store: store}
	ledger := NewLedger(&memEntitlements{store: store})

	requests := NewRequestService(transactor, &memCategories{store: store}, &memRequests{store: store},
		&memEmployees{store: store}, ledger, approvers, authorizer)
	requests.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	return &testEnv{
		store:      store,
		authorizer: authorizer,
		approvers:  approvers,
		ledger:     ledger,
		requests:   requests,
		categories: NewCategoryService(&memCategories{store: store}, authorizer),
		entitle: NewEntitlementService(transactor, &memEntitlements{store: store}, &memCategories{store: store},
			&memEmployees{store: store}, authorizer),
		vacation: vacation,
		sick:     sick,
	}
}

// seedEntitlement stores a record for the owner and returns its key.
func (e *testEnv) seedEntitlement(category leave.Category, granted, carried, used, pending int) leave.EntitlementKey {
	key := leave.EntitlementKey{EmployeeID: ownerID, CategoryID: category.ID, Year: testYear}
	e.store.entitlements[key] = leave.Entitlement{
		ID: "ent-" + category.Code, EmployeeID: ownerID, CategoryID: category.ID, Year: testYear,
		Granted: granted, CarriedOver: carried, Used: used, Pending: pending,
	}
	return key
}

func submitRequest(categoryID, start, end string) leave.SubmitLeaveRequest {
	return leave.SubmitLeaveRequest{
		EmployeeID: ownerID,
		CategoryID: categoryID,
		StartDate:  start,
		EndDate:    end,
		Reason:     "family trip",
	}
}
