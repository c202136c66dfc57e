package leave

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type CategoryServiceImpl struct {
	leave.CategoryRepository
	authorizer rbac.Authorizer
}

func NewCategoryService(categoryRepository leave.CategoryRepository, authorizer rbac.Authorizer) *CategoryServiceImpl {
	return &CategoryServiceImpl{
		CategoryRepository: categoryRepository,
		authorizer:         authorizer,
	}
}

// Create implements leave.CategoryService.
func (s *CategoryServiceImpl) Create(ctx context.Context, req leave.CreateCategoryRequest) (leave.CategoryResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.CategoryResponse{}, err
	}

	actor, err := s.authorizer.AuthorizeEmployee(ctx, req.ActorID, rbac.PermissionLeaveManageTypes)
	if err != nil {
		return leave.CategoryResponse{}, err
	}

	noticeDays := req.NoticeDays
	if !req.RequiresAdvanceNotice {
		noticeDays = 0
	}

	created, err := s.CategoryRepository.Create(ctx, leave.Category{
		OrganizationID:             actor.OrganizationID,
		Code:                       req.Code,
		Name:                       req.Name,
		Description:                req.Description,
		DefaultAllowance:           req.DefaultAllowance,
		MaxPaidDays:                req.MaxPaidDays,
		RequiresSupportingDocument: req.RequiresSupportingDocument,
		RequiresAdvanceNotice:      req.RequiresAdvanceNotice,
		NoticeDays:                 noticeDays,
		Color:                      req.Color,
		IsActive:                   true,
	})
	if err != nil {
		return leave.CategoryResponse{}, err
	}

	slog.InfoContext(ctx, "leave category created",
		"leave_category_id", created.ID,
		"code", created.Code,
		"organization_id", created.OrganizationID,
	)
	return leave.NewCategoryResponse(created), nil
}

// Update implements leave.CategoryService.
func (s *CategoryServiceImpl) Update(ctx context.Context, req leave.UpdateCategoryRequest) (leave.CategoryResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.CategoryResponse{}, err
	}

	category, err := s.ownedCategory(ctx, req.ActorID, req.ID)
	if err != nil {
		return leave.CategoryResponse{}, err
	}

	req.Apply(&category)
	if category.RequiresAdvanceNotice && category.NoticeDays == 0 {
		var errs validator.ValidationErrors
		errs.Add("notice_days", "notice_days must be positive when advance notice is required")
		return leave.CategoryResponse{}, errs
	}

	updated, err := s.CategoryRepository.Update(ctx, category)
	if err != nil {
		return leave.CategoryResponse{}, err
	}
	return leave.NewCategoryResponse(updated), nil
}

// ToggleActive implements leave.CategoryService. Deactivation hides the
// category from new requests; existing balances and requests stay.
func (s *CategoryServiceImpl) ToggleActive(ctx context.Context, actorID, id string) (leave.CategoryResponse, error) {
	category, err := s.ownedCategory(ctx, actorID, id)
	if err != nil {
		return leave.CategoryResponse{}, err
	}

	updated, err := s.CategoryRepository.SetActive(ctx, category.ID, !category.IsActive)
	if err != nil {
		return leave.CategoryResponse{}, err
	}

	slog.InfoContext(ctx, "leave category toggled",
		"leave_category_id", updated.ID,
		"is_active", updated.IsActive,
	)
	return leave.NewCategoryResponse(updated), nil
}

// List implements leave.CategoryService. Inactive categories are only
// listed for actors who manage them.
func (s *CategoryServiceImpl) List(ctx context.Context, actorID string, includeInactive bool) ([]leave.CategoryResponse, error) {
	permission := rbac.PermissionLeaveViewOwn
	if includeInactive {
		permission = rbac.PermissionLeaveManageTypes
	}

	actor, err := s.authorizer.AuthorizeEmployee(ctx, actorID, permission)
	if err != nil {
		return nil, err
	}

	categories, err := s.CategoryRepository.ListByOrganization(ctx, actor.OrganizationID, !includeInactive)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, leave.NewCategoryResponse(c))
	}
	return responses, nil
}

// SeedDefaults implements leave.CategoryService. Codes already present are
// left as they are.
func (s *CategoryServiceImpl) SeedDefaults(ctx context.Context, organizationID string) (int, error) {
	return s.CategoryRepository.CreateIfAbsent(ctx, fixtures.GetDefaultLeaveCategories(organizationID))
}

func (s *CategoryServiceImpl) ownedCategory(ctx context.Context, actorID, id string) (leave.Category, error) {
	actor, err := s.authorizer.AuthorizeEmployee(ctx, actorID, rbac.PermissionLeaveManageTypes)
	if err != nil {
		return leave.Category{}, err
	}

	category, err := s.CategoryRepository.GetByID(ctx, id)
	if err != nil {
		return leave.Category{}, err
	}
	if category.OrganizationID != actor.OrganizationID {
		return leave.Category{}, leave.ErrCategoryNotFound
	}
	return category, nil
}
