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

type leaveEntitlementRepositoryImpl struct {
	db *database.DB
}

func NewLeaveEntitlementRepository(db *database.DB) leave.EntitlementRepository {
	return &leaveEntitlementRepositoryImpl{db: db}
}

const leaveEntitlementColumns = `
	le.id, le.employee_id, le.leave_category_id, le.year,
	le.granted, le.carried_over, le.used, le.pending,
	le.created_at, le.updated_at,
	lc.code, lc.name
`

func scanLeaveEntitlement(row pgx.Row) (leave.Entitlement, error) {
	var e leave.Entitlement
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.CategoryID, &e.Year,
		&e.Granted, &e.CarriedOver, &e.Used, &e.Pending,
		&e.CreatedAt, &e.UpdatedAt,
		&e.CategoryCode, &e.CategoryName,
	)
	return e, err
}

// GetByKey implements leave.EntitlementRepository.
func (r *leaveEntitlementRepositoryImpl) GetByKey(ctx context.Context, key leave.EntitlementKey) (leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveEntitlementColumns + `
		FROM leave_entitlements le
		JOIN leave_categories lc ON lc.id = le.leave_category_id
		WHERE le.employee_id = $1 AND le.leave_category_id = $2 AND le.year = $3
	`

	e, err := scanLeaveEntitlement(q.QueryRow(ctx, query, key.EmployeeID, key.CategoryID, key.Year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Entitlement{}, leave.ErrEntitlementNotFound
		}
		return leave.Entitlement{}, fmt.Errorf("get entitlement: %w", err)
	}
	return e, nil
}

// ListByEmployeeYear implements leave.EntitlementRepository.
func (r *leaveEntitlementRepositoryImpl) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveEntitlementColumns + `
		FROM leave_entitlements le
		JOIN leave_categories lc ON lc.id = le.leave_category_id
		WHERE le.employee_id = $1 AND le.year = $2
		ORDER BY lc.code
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("list entitlements of employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	entitlements := make([]leave.Entitlement, 0)
	for rows.Next() {
		e, err := scanLeaveEntitlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entitlement: %w", err)
		}
		entitlements = append(entitlements, e)
	}
	return entitlements, rows.Err()
}

// AddPending implements leave.EntitlementRepository.
// The availability guard and the increment are one statement, so two
// concurrent reservations on the same row serialize on its row lock and the
// second one re-evaluates the guard against the committed balance.
func (r *leaveEntitlementRepositoryImpl) AddPending(ctx context.Context, key leave.EntitlementKey, days int, enforceAvailable bool) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_entitlements
		SET pending = pending + $4, updated_at = NOW()
		WHERE employee_id = $1 AND leave_category_id = $2 AND year = $3
		  AND (NOT $5 OR granted + carried_over - used - pending >= $4)
	`

	tag, err := q.Exec(ctx, query, key.EmployeeID, key.CategoryID, key.Year, days, enforceAvailable)
	if err != nil {
		return false, fmt.Errorf("add pending days: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MovePendingToUsed implements leave.EntitlementRepository.
func (r *leaveEntitlementRepositoryImpl) MovePendingToUsed(ctx context.Context, key leave.EntitlementKey, days int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_entitlements
		SET pending = pending - $4, used = used + $4, updated_at = NOW()
		WHERE employee_id = $1 AND leave_category_id = $2 AND year = $3
		  AND pending >= $4
	`

	tag, err := q.Exec(ctx, query, key.EmployeeID, key.CategoryID, key.Year, days)
	if err != nil {
		return false, fmt.Errorf("move pending days to used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RemovePending implements leave.EntitlementRepository.
func (r *leaveEntitlementRepositoryImpl) RemovePending(ctx context.Context, key leave.EntitlementKey, days int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_entitlements
		SET pending = pending - $4, updated_at = NOW()
		WHERE employee_id = $1 AND leave_category_id = $2 AND year = $3
		  AND pending >= $4
	`

	tag, err := q.Exec(ctx, query, key.EmployeeID, key.CategoryID, key.Year, days)
	if err != nil {
		return false, fmt.Errorf("remove pending days: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Upsert implements leave.EntitlementRepository. A conflicting row that
// fails the availability guard is left untouched and nothing is returned.
func (r *leaveEntitlementRepositoryImpl) Upsert(ctx context.Context, entitlement leave.Entitlement, enforceAvailable bool) (leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH upserted AS (
			INSERT INTO leave_entitlements AS cur (
				id, employee_id, leave_category_id, year, granted, carried_over, used, pending,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, 0, 0, NOW(), NOW())
			ON CONFLICT (employee_id, leave_category_id, year) DO UPDATE
			SET granted = EXCLUDED.granted, carried_over = EXCLUDED.carried_over, updated_at = NOW()
			WHERE NOT $7 OR EXCLUDED.granted + EXCLUDED.carried_over - cur.used - cur.pending >= 0
			RETURNING *
		)
		SELECT ` + leaveEntitlementColumns + `
		FROM upserted le
		JOIN leave_categories lc ON lc.id = le.leave_category_id
	`

	e, err := scanLeaveEntitlement(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(), entitlement.EmployeeID, entitlement.CategoryID, entitlement.Year,
		entitlement.Granted, entitlement.CarriedOver, enforceAvailable,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Entitlement{}, leave.ErrBalanceBelowCommitted
		}
		return leave.Entitlement{}, fmt.Errorf("upsert entitlement: %w", err)
	}
	return e, nil
}

// CreateIfAbsent implements leave.EntitlementRepository.
func (r *leaveEntitlementRepositoryImpl) CreateIfAbsent(ctx context.Context, entitlements []leave.Entitlement) (int, error) {
	if len(entitlements) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_entitlements (
			id, employee_id, leave_category_id, year, granted, carried_over, used, pending,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $7)
		ON CONFLICT (employee_id, leave_category_id, year) DO NOTHING
	`

	batch := &pgx.Batch{}
	now := time.Now()
	for _, e := range entitlements {
		batch.Queue(query,
			uuid.Must(uuid.NewV7()).String(), e.EmployeeID, e.CategoryID, e.Year,
			e.Granted, e.CarriedOver, now,
		)
	}

	return execCountingBatch(ctx, q, batch)
}
