package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_category_id, lr.start_date, lr.end_date, lr.total_days,
	lr.reserved_pending, lr.reason, lr.document_ref, lr.status, lr.decided_by, lr.decided_at, lr.decision_note,
	lr.created_at, lr.updated_at
`

const leaveRequestJoinedColumns = leaveRequestColumns + `,
	e.full_name AS employee_name,
	lc.name AS leave_category_name
`

const leaveRequestJoins = `
	JOIN employees e ON e.id = lr.employee_id
	JOIN leave_categories lc ON lc.id = lr.leave_category_id
`

func scanLeaveRequest(row pgx.Row, joined bool) (leave.Request, error) {
	var r leave.Request
	dest := []any{
		&r.ID, &r.EmployeeID, &r.CategoryID, &r.StartDate, &r.EndDate, &r.TotalDays,
		&r.Reserved, &r.Reason, &r.DocumentRef, &r.Status, &r.DecidedBy, &r.DecidedAt, &r.DecisionNote,
		&r.CreatedAt, &r.UpdatedAt,
	}
	if joined {
		dest = append(dest, &r.EmployeeName, &r.CategoryName)
	}
	err := row.Scan(dest...)
	return r, err
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.Request, error) {
	defer rows.Close()

	requests := make([]leave.Request, 0)
	for rows.Next() {
		r, err := scanLeaveRequest(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests AS lr (
			id, employee_id, leave_category_id, start_date, end_date, total_days,
			reserved_pending, reason, document_ref, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(), request.EmployeeID, request.CategoryID,
		request.StartDate, request.EndDate, request.TotalDays,
		request.Reserved, request.Reason, request.DocumentRef, leave.RequestStatusPending,
	), false)
	if err != nil {
		return leave.Request{}, fmt.Errorf("create leave request: %w", err)
	}
	return created, nil
}

// GetByID implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestJoinedColumns + ` FROM leave_requests lr ` + leaveRequestJoins + ` WHERE lr.id = $1`

	request, err := scanLeaveRequest(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("get leave request %s: %w", id, err)
	}
	return request, nil
}

// GetByIDForUpdate implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests lr WHERE lr.id = $1 FOR UPDATE`

	request, err := scanLeaveRequest(q.QueryRow(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("lock leave request %s: %w", id, err)
	}
	return request, nil
}

// UpdateDecision implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateDecision(ctx context.Context, id string, decision leave.Decision) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests AS lr
		SET status = $2, decided_by = $3, decided_at = $4, decision_note = $5, updated_at = NOW()
		WHERE lr.id = $1 AND lr.status = $6
		RETURNING ` + leaveRequestColumns

	updated, err := scanLeaveRequest(q.QueryRow(ctx, query,
		id, decision.Status, decision.DecidedBy, decision.DecidedAt, decision.Note, leave.RequestStatusPending,
	), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrAlreadyDecided
		}
		return leave.Request{}, fmt.Errorf("decide leave request %s: %w", id, err)
	}
	return updated, nil
}

// ListByEmployee implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, year *int) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestJoinedColumns + `
		FROM leave_requests lr ` + leaveRequestJoins + `
		WHERE lr.employee_id = $1
		  AND ($2::int IS NULL OR EXTRACT(YEAR FROM lr.start_date)::int = $2::int)
		ORDER BY lr.start_date DESC, lr.created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("list leave requests of employee %s: %w", employeeID, err)
	}
	return collectLeaveRequests(rows)
}

// ListPendingByDepartments implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) ListPendingByDepartments(ctx context.Context, departmentIDs []string, excludeEmployeeID string) ([]leave.Request, error) {
	if len(departmentIDs) == 0 {
		return []leave.Request{}, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestJoinedColumns + `
		FROM leave_requests lr ` + leaveRequestJoins + `
		WHERE lr.status = $1
		  AND e.department_id = ANY($2::uuid[])
		  AND lr.employee_id <> $3
		ORDER BY lr.created_at DESC
	`

	rows, err := q.Query(ctx, query, leave.RequestStatusPending, departmentIDs, excludeEmployeeID)
	if err != nil {
		return nil, fmt.Errorf("list pending leave requests: %w", err)
	}
	return collectLeaveRequests(rows)
}
