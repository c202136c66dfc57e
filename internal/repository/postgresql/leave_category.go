package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveCategoryRepositoryImpl struct {
	db *database.DB
}

func NewLeaveCategoryRepository(db *database.DB) leave.CategoryRepository {
	return &leaveCategoryRepositoryImpl{db: db}
}

const leaveCategoryColumns = `
	id, organization_id, code, name, description, default_allowance, max_paid_days,
	requires_supporting_document, requires_advance_notice, notice_days, color, is_active,
	created_at, updated_at
`

func scanLeaveCategory(row pgx.Row) (leave.Category, error) {
	var c leave.Category
	err := row.Scan(
		&c.ID, &c.OrganizationID, &c.Code, &c.Name, &c.Description, &c.DefaultAllowance, &c.MaxPaidDays,
		&c.RequiresSupportingDocument, &c.RequiresAdvanceNotice, &c.NoticeDays, &c.Color, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Create implements leave.CategoryRepository.
func (r *leaveCategoryRepositoryImpl) Create(ctx context.Context, category leave.Category) (leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_categories (
			id, organization_id, code, name, description, default_allowance, max_paid_days,
			requires_supporting_document, requires_advance_notice, notice_days, color, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING ` + leaveCategoryColumns

	created, err := scanLeaveCategory(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(), category.OrganizationID, category.Code, category.Name,
		category.Description, category.DefaultAllowance, category.MaxPaidDays,
		category.RequiresSupportingDocument, category.RequiresAdvanceNotice, category.NoticeDays,
		category.Color, category.IsActive,
	))
	if err != nil {
		if constraintViolation(err, pgUniqueViolation, "uq_leave_categories_org_code") {
			return leave.Category{}, leave.ErrDuplicateCategoryCode
		}
		return leave.Category{}, fmt.Errorf("create leave category %s: %w", category.Code, err)
	}
	return created, nil
}

// GetByID implements leave.CategoryRepository.
func (r *leaveCategoryRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveCategoryColumns + ` FROM leave_categories WHERE id = $1`

	c, err := scanLeaveCategory(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Category{}, leave.ErrCategoryNotFound
		}
		return leave.Category{}, fmt.Errorf("get leave category %s: %w", id, err)
	}
	return c, nil
}

// ListByOrganization implements leave.CategoryRepository.
func (r *leaveCategoryRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveCategoryColumns + `
		FROM leave_categories
		WHERE organization_id = $1 AND (is_active OR NOT $2)
		ORDER BY code
	`

	rows, err := q.Query(ctx, query, organizationID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list leave categories: %w", err)
	}
	defer rows.Close()

	categories := make([]leave.Category, 0)
	for rows.Next() {
		c, err := scanLeaveCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update implements leave.CategoryRepository. Code and organization are immutable.
func (r *leaveCategoryRepositoryImpl) Update(ctx context.Context, category leave.Category) (leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_categories
		SET name = $2, description = $3, default_allowance = $4, max_paid_days = $5,
			requires_supporting_document = $6, requires_advance_notice = $7, notice_days = $8,
			color = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leaveCategoryColumns

	updated, err := scanLeaveCategory(q.QueryRow(ctx, query,
		category.ID, category.Name, category.Description, category.DefaultAllowance, category.MaxPaidDays,
		category.RequiresSupportingDocument, category.RequiresAdvanceNotice, category.NoticeDays,
		category.Color,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Category{}, leave.ErrCategoryNotFound
		}
		return leave.Category{}, fmt.Errorf("update leave category %s: %w", category.ID, err)
	}
	return updated, nil
}

// SetActive implements leave.CategoryRepository.
func (r *leaveCategoryRepositoryImpl) SetActive(ctx context.Context, id string, active bool) (leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_categories
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leaveCategoryColumns

	updated, err := scanLeaveCategory(q.QueryRow(ctx, query, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Category{}, leave.ErrCategoryNotFound
		}
		return leave.Category{}, fmt.Errorf("toggle leave category %s: %w", id, err)
	}
	return updated, nil
}

// CreateIfAbsent implements leave.CategoryRepository.
func (r *leaveCategoryRepositoryImpl) CreateIfAbsent(ctx context.Context, categories []leave.Category) (int, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_categories (
			id, organization_id, code, name, description, default_allowance, max_paid_days,
			requires_supporting_document, requires_advance_notice, notice_days, color, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		ON CONFLICT (organization_id, code) DO NOTHING
	`

	batch := &pgx.Batch{}
	now := time.Now()
	for _, c := range categories {
		batch.Queue(query,
			uuid.Must(uuid.NewV7()).String(), c.OrganizationID, c.Code, c.Name, c.Description,
			c.DefaultAllowance, c.MaxPaidDays, c.RequiresSupportingDocument, c.RequiresAdvanceNotice,
			c.NoticeDays, c.Color, c.IsActive, now,
		)
	}

	return execCountingBatch(ctx, q, batch)
}
