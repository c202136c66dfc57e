package postgresql_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const testYear = 2025

func TestLeaveEntitlement_AddPendingConcurrent(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveEntitlementRepository(testDB)
	transactor := postgresql.NewTransactor(testDB)
	seedEntitlement(t, f.OwnerID, f.VacationID, testYear, 6, 0, 0)

	key := leave.EntitlementKey{EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear}

	var reserved atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			return transactor.WithinTransaction(ctx, func(ctx context.Context) error {
				ok, err := repo.AddPending(ctx, key, 3, true)
				if ok {
					reserved.Add(1)
				}
				return err
			})
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(2), reserved.Load())

	e, err := repo.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 6, e.Pending)
	assert.Equal(t, 0, e.Available())
	assert.Equal(t, "VACATION", *e.CategoryCode)
}

func TestLeaveEntitlement_Transitions(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveEntitlementRepository(testDB)
	seedEntitlement(t, f.OwnerID, f.VacationID, testYear, 10, 2, 3)

	key := leave.EntitlementKey{EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear}

	ok, err := repo.MovePendingToUsed(ctx, key, 4)
	require.NoError(t, err)
	assert.False(t, ok, "pending does not cover the days")

	ok, err = repo.MovePendingToUsed(ctx, key, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RemovePending(ctx, key, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	e, err := repo.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 4, e.Used)
	assert.Equal(t, 0, e.Pending)
	assert.Equal(t, 6, e.Available())

	ok, err = repo.RemovePending(ctx, key, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByKey(ctx, leave.EntitlementKey{EmployeeID: f.OwnerID, CategoryID: f.SickID, Year: testYear})
	assert.ErrorIs(t, err, leave.ErrEntitlementNotFound)
}

func TestLeaveEntitlement_Upsert(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveEntitlementRepository(testDB)

	created, err := repo.Upsert(ctx, leave.Entitlement{
		EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear, Granted: 6, CarriedOver: 2,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 8, created.Available())

	key := created.Key()
	ok, err := repo.AddPending(ctx, key, 5, true)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = repo.Upsert(ctx, leave.Entitlement{EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear, Granted: 4}, true)
	assert.ErrorIs(t, err, leave.ErrBalanceBelowCommitted)

	updated, err := repo.Upsert(ctx, leave.Entitlement{EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear, Granted: 5}, true)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 5, updated.Pending)
	assert.Equal(t, 0, updated.Available())

	// Unbounded categories record usage past the grant.
	seedEntitlement(t, f.OwnerID, f.SickID, testYear, 0, 12, 0)
	sick, err := repo.Upsert(ctx, leave.Entitlement{EmployeeID: f.OwnerID, CategoryID: f.SickID, Year: testYear, Granted: 3}, false)
	require.NoError(t, err)
	assert.Equal(t, -9, sick.Available())
}

func TestLeaveEntitlement_CreateIfAbsent(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveEntitlementRepository(testDB)
	seedEntitlement(t, f.OwnerID, f.VacationID, testYear, 10, 4, 0)

	created, err := repo.CreateIfAbsent(ctx, []leave.Entitlement{
		{EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear, Granted: 6},
		{EmployeeID: f.ApproverAID, CategoryID: f.VacationID, Year: testYear, Granted: 6},
		{EmployeeID: f.ApproverBID, CategoryID: f.VacationID, Year: testYear, Granted: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	existing, err := repo.GetByKey(ctx, leave.EntitlementKey{EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear})
	require.NoError(t, err)
	assert.Equal(t, 10, existing.Granted, "existing rows are not overwritten")
	assert.Equal(t, 4, existing.Used)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	entitlements := postgresql.NewLeaveEntitlementRepository(testDB)
	requests := postgresql.NewLeaveRequestRepository(testDB)
	transactor := postgresql.NewTransactor(testDB)
	seedEntitlement(t, f.OwnerID, f.VacationID, testYear, 6, 0, 0)

	key := leave.EntitlementKey{EmployeeID: f.OwnerID, CategoryID: f.VacationID, Year: testYear}
	failure := errors.New("persistence failed")

	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := entitlements.AddPending(ctx, key, 3, true)
		require.NoError(t, err)
		require.True(t, ok)

		// Nested calls join the outer transaction.
		return transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := requests.Create(ctx, newRequest(f, "2025-04-01", "2025-04-03"))
			require.NoError(t, err)
			return failure
		})
	})
	assert.ErrorIs(t, err, failure)

	e, err := entitlements.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Pending)

	list, err := requests.ListByEmployee(ctx, f.OwnerID, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func newRequest(f fixture, start, end string) leave.Request {
	s, _ := time.Parse(time.DateOnly, start)
	e, _ := time.Parse(time.DateOnly, end)
	return leave.Request{
		EmployeeID: f.OwnerID,
		CategoryID: f.VacationID,
		StartDate:  s,
		EndDate:    e,
		TotalDays:  leave.InclusiveDays(s, e),
		Reserved:   true,
		Reason:     "family trip",
	}
}

func TestLeaveRequest_DecisionIsConditional(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(testDB)

	created, err := repo.Create(ctx, newRequest(f, "2025-03-10", "2025-03-12"))
	require.NoError(t, err)
	assert.Equal(t, leave.RequestStatusPending, created.Status)
	assert.Equal(t, 3, created.TotalDays)
	assert.True(t, created.Reserved)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Somchai Owner", *got.EmployeeName)
	assert.Equal(t, "Vacation", *got.CategoryName)

	note := "enjoy"
	decided, err := repo.UpdateDecision(ctx, created.ID, leave.Decision{
		Status: leave.RequestStatusApproved, DecidedBy: f.ApproverAID, DecidedAt: time.Now(), Note: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.RequestStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, f.ApproverAID, *decided.DecidedBy)

	_, err = repo.UpdateDecision(ctx, created.ID, leave.Decision{
		Status: leave.RequestStatusRejected, DecidedBy: f.ApproverBID, DecidedAt: time.Now(),
	})
	assert.ErrorIs(t, err, leave.ErrAlreadyDecided)

	_, err = repo.GetByID(ctx, newID())
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveRequest_Listing(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(testDB)

	march, err := repo.Create(ctx, newRequest(f, "2025-03-10", "2025-03-12"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newRequest(f, "2026-01-05", "2026-01-05"))
	require.NoError(t, err)

	own := newRequest(f, "2025-05-01", "2025-05-02")
	own.EmployeeID = f.ApproverAID
	_, err = repo.Create(ctx, own)
	require.NoError(t, err)

	year := testYear
	list, err := repo.ListByEmployee(ctx, f.OwnerID, &year)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, march.ID, list[0].ID)

	list, err = repo.ListByEmployee(ctx, f.OwnerID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	pending, err := repo.ListPendingByDepartments(ctx, []string{f.DepartmentID}, f.ApproverAID)
	require.NoError(t, err)
	assert.Len(t, pending, 2, "the approver's own request is excluded")
	for _, r := range pending {
		assert.Equal(t, f.OwnerID, r.EmployeeID)
	}
}

func TestLeaveCategory_DuplicateCode(t *testing.T) {
	f := setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveCategoryRepository(testDB)

	_, err := repo.Create(ctx, leave.Category{OrganizationID: f.OrganizationID, Code: "SICK", Name: "Sick again", IsActive: true})
	assert.ErrorIs(t, err, leave.ErrDuplicateCategoryCode)

	inactive, err := repo.SetActive(ctx, f.SickID, false)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	active, err := repo.ListByOrganization(ctx, f.OrganizationID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "VACATION", active[0].Code)

	all, err := repo.ListByOrganization(ctx, f.OrganizationID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
