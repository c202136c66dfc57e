package leave

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
)

// memStore backs every fake repository of this package. Transactions are
// serialized and roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	employees    map[string]employee.Employee
	categories   map[string]leave.Category
	entitlements map[leave.EntitlementKey]leave.Entitlement
	requests     map[string]leave.Request
	seq          int

	createRequestErr error
	commitErr        error
}

func newMemStore() *memStore {
	return &memStore{
		employees:    make(map[string]employee.Employee),
		categories:   make(map[string]leave.Category),
		entitlements: make(map[leave.EntitlementKey]leave.Entitlement),
		requests:     make(map[string]leave.Request),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) entitlement(key leave.EntitlementKey) leave.Entitlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entitlements[key]
}

func (s *memStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// ==========================================
// TRANSACTOR
// ==========================================

type memTransactor struct {
	store *memStore
}

type memTxKey struct{}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	t.store.mu.Lock()
	entitlements := maps.Clone(t.store.entitlements)
	requests := maps.Clone(t.store.requests)
	categories := maps.Clone(t.store.categories)
	t.store.mu.Unlock()

	err := fn(context.WithValue(ctx, memTxKey{}, true))
	if err == nil {
		err = t.store.commitErr
	}
	if err != nil {
		t.store.mu.Lock()
		t.store.entitlements = entitlements
		t.store.requests = requests
		t.store.categories = categories
		t.store.mu.Unlock()
	}
	return err
}

// ==========================================
// EMPLOYEES
// ==========================================

type memEmployees struct{ store *memStore }

func (r *memEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memEmployees) ListActiveByOrganization(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]employee.Employee, 0)
	for _, e := range r.store.employees {
		if e.OrganizationID == organizationID && e.IsActive() {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ==========================================
// CATEGORIES
// ==========================================

type memCategories struct{ store *memStore }

func (r *memCategories) Create(ctx context.Context, c leave.Category) (leave.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.categories {
		if existing.OrganizationID == c.OrganizationID && existing.Code == c.Code {
			return leave.Category{}, leave.ErrDuplicateCategoryCode
		}
	}
	c.ID = r.store.nextID("cat")
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.store.categories[c.ID] = c
	return c, nil
}

func (r *memCategories) GetByID(ctx context.Context, id string) (leave.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.categories[id]
	if !ok {
		return leave.Category{}, leave.ErrCategoryNotFound
	}
	return c, nil
}

func (r *memCategories) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]leave.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]leave.Category, 0)
	for _, c := range r.store.categories {
		if c.OrganizationID == organizationID && (c.IsActive || !activeOnly) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (r *memCategories) Update(ctx context.Context, c leave.Category) (leave.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.categories[c.ID]; !ok {
		return leave.Category{}, leave.ErrCategoryNotFound
	}
	c.UpdatedAt = time.Now()
	r.store.categories[c.ID] = c
	return c, nil
}

func (r *memCategories) SetActive(ctx context.Context, id string, active bool) (leave.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.categories[id]
	if !ok {
		return leave.Category{}, leave.ErrCategoryNotFound
	}
	c.IsActive = active
	r.store.categories[id] = c
	return c, nil
}

func (r *memCategories) CreateIfAbsent(ctx context.Context, categories []leave.Category) (int, error) {
	added := 0
	for _, c := range categories {
		if _, err := r.Create(ctx, c); err == nil {
			added++
		}
	}
	return added, nil
}

// ==========================================
// ENTITLEMENTS
// ==========================================

type memEntitlements struct{ store *memStore }

func (r *memEntitlements) GetByKey(ctx context.Context, key leave.EntitlementKey) (leave.Entitlement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entitlements[key]
	if !ok {
		return leave.Entitlement{}, leave.ErrEntitlementNotFound
	}
	return e, nil
}

func (r *memEntitlements) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.Entitlement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]leave.Entitlement, 0)
	for _, e := range r.store.entitlements {
		if e.EmployeeID == employeeID && e.Year == year {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CategoryID < result[j].CategoryID })
	return result, nil
}

func (r *memEntitlements) AddPending(ctx context.Context, key leave.EntitlementKey, days int, enforceAvailable bool) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entitlements[key]
	if !ok || (enforceAvailable && e.Available() < days) {
		return false, nil
	}
	e.Pending += days
	r.store.entitlements[key] = e
	return true, nil
}

func (r *memEntitlements) MovePendingToUsed(ctx context.Context, key leave.EntitlementKey, days int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entitlements[key]
	if !ok || e.Pending < days {
		return false, nil
	}
	e.Pending -= days
	e.Used += days
	r.store.entitlements[key] = e
	return true, nil
}

func (r *memEntitlements) RemovePending(ctx context.Context, key leave.EntitlementKey, days int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entitlements[key]
	if !ok || e.Pending < days {
		return false, nil
	}
	e.Pending -= days
	r.store.entitlements[key] = e
	return true, nil
}

func (r *memEntitlements) Upsert(ctx context.Context, entitlement leave.Entitlement, enforceAvailable bool) (leave.Entitlement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := entitlement.Key()
	e, ok := r.store.entitlements[key]
	if !ok {
		e = leave.Entitlement{ID: r.store.nextID("ent"), EmployeeID: key.EmployeeID, CategoryID: key.CategoryID, Year: key.Year}
	}
	if enforceAvailable && entitlement.Granted+entitlement.CarriedOver-e.Used-e.Pending < 0 {
		return leave.Entitlement{}, leave.ErrBalanceBelowCommitted
	}
	e.Granted = entitlement.Granted
	e.CarriedOver = entitlement.CarriedOver
	r.store.entitlements[key] = e
	return e, nil
}

func (r *memEntitlements) CreateIfAbsent(ctx context.Context, entitlements []leave.Entitlement) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	added := 0
	for _, e := range entitlements {
		if _, ok := r.store.entitlements[e.Key()]; ok {
			continue
		}
		e.ID = r.store.nextID("ent")
		r.store.entitlements[e.Key()] = e
		added++
	}
	return added, nil
}

// ==========================================
// REQUESTS
// ==========================================

type memRequests struct{ store *memStore }

func (r *memRequests) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.createRequestErr != nil {
		return leave.Request{}, r.store.createRequestErr
	}
	request.ID = r.store.nextID("req")
	request.Status = leave.RequestStatusPending
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.store.requests[request.ID] = request
	return request, nil
}

func (r *memRequests) GetByID(ctx context.Context, id string) (leave.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

func (r *memRequests) GetByIDForUpdate(ctx context.Context, id string) (leave.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *memRequests) UpdateDecision(ctx context.Context, id string, decision leave.Decision) (leave.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok || request.Status != leave.RequestStatusPending {
		return leave.Request{}, leave.ErrAlreadyDecided
	}
	decidedAt := decision.DecidedAt
	decidedBy := decision.DecidedBy
	request.Status = decision.Status
	request.DecidedBy = &decidedBy
	request.DecidedAt = &decidedAt
	request.DecisionNote = decision.Note
	r.store.requests[id] = request
	return request, nil
}

func (r *memRequests) ListByEmployee(ctx context.Context, employeeID string, year *int) ([]leave.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]leave.Request, 0)
	for _, request := range r.store.requests {
		if request.EmployeeID != employeeID {
			continue
		}
		if year != nil && request.Year() != *year {
			continue
		}
		result = append(result, request)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (r *memRequests) ListPendingByDepartments(ctx context.Context, departmentIDs []string, excludeEmployeeID string) ([]leave.Request, error) {
	return nil, fmt.Errorf("not used by leave services")
}

// ==========================================
// AUTHORIZATION AND ROUTING
// ==========================================

// memAuthorizer applies rbac.DefaultRolePermissions unless overridden.
type memAuthorizer struct {
	store     *memStore
	overrides map[rbac.Role][]rbac.Permission
}

func (a *memAuthorizer) AuthorizeEmployee(ctx context.Context, employeeID string, permission rbac.Permission) (employee.Employee, error) {
	a.store.mu.Lock()
	emp, ok := a.store.employees[employeeID]
	a.store.mu.Unlock()
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}

	granted, ok := a.overrides[rbac.Role(emp.Role)]
	if !ok {
		granted = rbac.DefaultRolePermissions[rbac.Role(emp.Role)]
	}
	for _, p := range granted {
		if p == permission {
			return emp, nil
		}
	}
	return employee.Employee{}, rbac.ErrPermissionDenied
}

type memApprovers struct {
	chains map[string][]string
}

func (a *memApprovers) IsApprover(ctx context.Context, departmentID, approverID string) (bool, error) {
	for _, id := range a.chains[departmentID] {
		if id == approverID {
			return true, nil
		}
	}
	return false, nil
}
