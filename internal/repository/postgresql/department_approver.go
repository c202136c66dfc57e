package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type departmentApproverRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentApproverRepository(db *database.DB) approval.AssignmentRepository {
	return &departmentApproverRepositoryImpl{db: db}
}

// LockDepartment implements approval.AssignmentRepository.
func (r *departmentApproverRepositoryImpl) LockDepartment(ctx context.Context, organizationID, departmentID string) error {
	return r.findDepartment(ctx, organizationID, departmentID, true)
}

// CheckDepartment implements approval.AssignmentRepository.
func (r *departmentApproverRepositoryImpl) CheckDepartment(ctx context.Context, organizationID, departmentID string) error {
	return r.findDepartment(ctx, organizationID, departmentID, false)
}

func (r *departmentApproverRepositoryImpl) findDepartment(ctx context.Context, organizationID, departmentID string, lock bool) error {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id FROM departments WHERE id = $1 AND organization_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	var id string
	if err := q.QueryRow(ctx, query, departmentID, organizationID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.ErrDepartmentNotFound
		}
		return fmt.Errorf("find department %s: %w", departmentID, err)
	}
	return nil
}

// ListByDepartment implements approval.AssignmentRepository.
func (r *departmentApproverRepositoryImpl) ListByDepartment(ctx context.Context, departmentID string) ([]approval.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT da.department_id, da.approver_id, da.approver_order, da.created_at, e.full_name
		FROM department_approvers da
		JOIN employees e ON e.id = da.approver_id
		WHERE da.department_id = $1
		ORDER BY da.approver_order
	`

	rows, err := q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list approvers of department %s: %w", departmentID, err)
	}
	defer rows.Close()

	assignments := make([]approval.Assignment, 0)
	for rows.Next() {
		var a approval.Assignment
		if err := rows.Scan(&a.DepartmentID, &a.ApproverID, &a.Order, &a.CreatedAt, &a.ApproverName); err != nil {
			return nil, fmt.Errorf("scan approver: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListDepartmentsByApprover implements approval.AssignmentRepository.
func (r *departmentApproverRepositoryImpl) ListDepartmentsByApprover(ctx context.Context, approverID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT department_id FROM department_approvers WHERE approver_id = $1 ORDER BY department_id`, approverID)
	if err != nil {
		return nil, fmt.Errorf("list departments of approver %s: %w", approverID, err)
	}

	departmentIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan department: %w", err)
	}
	return departmentIDs, nil
}

// Exists implements approval.AssignmentRepository.
func (r *departmentApproverRepositoryImpl) Exists(ctx context.Context, departmentID, approverID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM department_approvers WHERE department_id = $1 AND approver_id = $2)`

	var exists bool
	if err := q.QueryRow(ctx, query, departmentID, approverID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check approver: %w", err)
	}
	return exists, nil
}

// Insert implements approval.AssignmentRepository. The order uniqueness
// constraint is deferred, so the shift and the insert only need to agree at
// commit.
func (r *departmentApproverRepositoryImpl) Insert(ctx context.Context, departmentID, approverID string, order int) (approval.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	shift := `
		UPDATE department_approvers
		SET approver_order = approver_order + 1
		WHERE department_id = $1 AND approver_order >= $2
	`
	if _, err := q.Exec(ctx, shift, departmentID, order); err != nil {
		return approval.Assignment{}, fmt.Errorf("shift approvers: %w", err)
	}

	insert := `
		INSERT INTO department_approvers (department_id, approver_id, approver_order, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING department_id, approver_id, approver_order, created_at
	`

	var a approval.Assignment
	err := q.QueryRow(ctx, insert, departmentID, approverID, order).Scan(&a.DepartmentID, &a.ApproverID, &a.Order, &a.CreatedAt)
	if err != nil {
		if constraintViolation(err, pgUniqueViolation, "department_approvers_pkey") {
			return approval.Assignment{}, approval.ErrDuplicateApprover
		}
		return approval.Assignment{}, fmt.Errorf("insert approver: %w", err)
	}
	return a, nil
}

// Delete implements approval.AssignmentRepository.
func (r *departmentApproverRepositoryImpl) Delete(ctx context.Context, departmentID, approverID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM department_approvers WHERE department_id = $1 AND approver_id = $2`, departmentID, approverID)
	if err != nil {
		return fmt.Errorf("delete approver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrAssignmentNotFound
	}

	resequence := `
		UPDATE department_approvers da
		SET approver_order = ranked.new_order
		FROM (
			SELECT approver_id, ROW_NUMBER() OVER (ORDER BY approver_order) AS new_order
			FROM department_approvers
			WHERE department_id = $1
		) ranked
		WHERE da.department_id = $1 AND da.approver_id = ranked.approver_id
		  AND da.approver_order <> ranked.new_order
	`
	if _, err := q.Exec(ctx, resequence, departmentID); err != nil {
		return fmt.Errorf("resequence approvers: %w", err)
	}
	return nil
}
