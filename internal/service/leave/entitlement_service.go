package leave

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
)

type EntitlementServiceImpl struct {
	transactor database.Transactor
	leave.EntitlementRepository
	leave.CategoryRepository
	employee.EmployeeRepository
	authorizer rbac.Authorizer
}

func NewEntitlementService(
	transactor database.Transactor,
	entitlementRepository leave.EntitlementRepository,
	categoryRepository leave.CategoryRepository,
	employeeRepository employee.EmployeeRepository,
	authorizer rbac.Authorizer,
) *EntitlementServiceImpl {
	return &EntitlementServiceImpl{
		transactor:            transactor,
		EntitlementRepository: entitlementRepository,
		CategoryRepository:    categoryRepository,
		EmployeeRepository:    employeeRepository,
		authorizer:            authorizer,
	}
}

// ListMine implements leave.EntitlementService.
func (s *EntitlementServiceImpl) ListMine(ctx context.Context, employeeID string, year int) ([]leave.EntitlementResponse, error) {
	if _, err := s.authorizer.AuthorizeEmployee(ctx, employeeID, rbac.PermissionLeaveViewOwn); err != nil {
		return nil, err
	}
	return s.list(ctx, employeeID, year)
}

// ListByEmployee implements leave.EntitlementService.
func (s *EntitlementServiceImpl) ListByEmployee(ctx context.Context, actorID, employeeID string, year int) ([]leave.EntitlementResponse, error) {
	actor, err := s.authorizer.AuthorizeEmployee(ctx, actorID, rbac.PermissionLeaveViewAll)
	if err != nil {
		return nil, err
	}
	if _, err := s.sameOrganizationEmployee(ctx, actor, employeeID); err != nil {
		return nil, err
	}
	return s.list(ctx, employeeID, year)
}

func (s *EntitlementServiceImpl) list(ctx context.Context, employeeID string, year int) ([]leave.EntitlementResponse, error) {
	entitlements, err := s.EntitlementRepository.ListByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.EntitlementResponse, 0, len(entitlements))
	for _, e := range entitlements {
		responses = append(responses, leave.NewEntitlementResponse(e))
	}
	return responses, nil
}

// Upsert implements leave.EntitlementService.
func (s *EntitlementServiceImpl) Upsert(ctx context.Context, req leave.UpsertEntitlementRequest) (leave.EntitlementResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.EntitlementResponse{}, err
	}

	actor, err := s.authorizer.AuthorizeEmployee(ctx, req.ActorID, rbac.PermissionLeaveManageEntitlements)
	if err != nil {
		return leave.EntitlementResponse{}, err
	}

	emp, err := s.sameOrganizationEmployee(ctx, actor, req.EmployeeID)
	if err != nil {
		return leave.EntitlementResponse{}, err
	}

	category, err := s.CategoryRepository.GetByID(ctx, req.CategoryID)
	if err != nil {
		return leave.EntitlementResponse{}, err
	}
	if category.OrganizationID != actor.OrganizationID {
		return leave.EntitlementResponse{}, leave.ErrCategoryNotFound
	}

	saved, err := s.EntitlementRepository.Upsert(ctx, leave.Entitlement{
		EmployeeID:  emp.ID,
		CategoryID:  category.ID,
		Year:        req.Year,
		Granted:     req.Granted,
		CarriedOver: req.CarriedOver,
	}, !category.IsUnbounded())
	if err != nil {
		return leave.EntitlementResponse{}, err
	}

	slog.InfoContext(ctx, "entitlement saved",
		"employee_id", emp.ID,
		"leave_category", category.Code,
		"year", req.Year,
		"granted", saved.Granted,
		"carried_over", saved.CarriedOver,
		"actor_id", actor.ID,
	)
	return leave.NewEntitlementResponse(saved), nil
}

// Provision implements leave.EntitlementService. Every active employee gets
// one record per active bounded category, granted the default allowance.
// Existing records are not touched.
func (s *EntitlementServiceImpl) Provision(ctx context.Context, req leave.ProvisionEntitlementsRequest) (leave.ProvisionEntitlementsResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ProvisionEntitlementsResponse{}, err
	}

	actor, err := s.authorizer.AuthorizeEmployee(ctx, req.ActorID, rbac.PermissionLeaveManageEntitlements)
	if err != nil {
		return leave.ProvisionEntitlementsResponse{}, err
	}

	employees, err := s.EmployeeRepository.ListActiveByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return leave.ProvisionEntitlementsResponse{}, err
	}
	categories, err := s.CategoryRepository.ListByOrganization(ctx, actor.OrganizationID, true)
	if err != nil {
		return leave.ProvisionEntitlementsResponse{}, err
	}

	records := make([]leave.Entitlement, 0, len(employees)*len(categories))
	for _, emp := range employees {
		for _, c := range categories {
			if c.IsUnbounded() {
				continue
			}
			records = append(records, leave.Entitlement{
				EmployeeID: emp.ID,
				CategoryID: c.ID,
				Year:       req.Year,
				Granted:    *c.DefaultAllowance,
			})
		}
	}

	var created int
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.EntitlementRepository.CreateIfAbsent(ctx, records)
		return err
	})
	if err != nil {
		return leave.ProvisionEntitlementsResponse{}, err
	}

	slog.InfoContext(ctx, "entitlements provisioned",
		"organization_id", actor.OrganizationID,
		"year", req.Year,
		"created", created,
		"skipped", len(records)-created,
	)

	return leave.ProvisionEntitlementsResponse{
		Year:      req.Year,
		Employees: len(employees),
		Created:   created,
		Skipped:   len(records) - created,
	}, nil
}

func (s *EntitlementServiceImpl) sameOrganizationEmployee(ctx context.Context, actor employee.Employee, employeeID string) (employee.Employee, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if emp.OrganizationID != actor.OrganizationID {
		return employee.Employee{}, employee.ErrNotInOrganization
	}
	return emp, nil
}
