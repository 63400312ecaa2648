package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

func TestLeaveRequestRepository_NextIdentity(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(sequence), 0) + 1 FROM leave_requests WHERE request_year = $1`)).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(12))

	id, err := NewLeaveRequestRepository(mock).NextIdentity(context.Background(), 2025)
	if err != nil {
		t.Fatalf("NextIdentity returned error: %v", err)
	}
	if id != "LEAVE-2025-0012" {
		t.Fatalf("expected LEAVE-2025-0012, got %s", id)
	}
}

func TestLeaveRequestRepository_FindByID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	requested := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leave_requests WHERE id = $1`)).
		WithArgs("LEAVE-2025-0001").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "employee_id", "leave_type", "start_date", "end_date", "reason", "status", "requested_at",
			"approved_by", "approved_at", "rejected_by", "rejected_at", "rejection_reason", "cancelled_at", "completed_at",
		}).AddRow("LEAVE-2025-0001", "EMP-2025-0001", "Vacation", start, end, "summer", "Pending", requested,
			nil, nil, nil, nil, "", nil, nil))

	req, err := NewLeaveRequestRepository(mock).FindByID(context.Background(), "LEAVE-2025-0001")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if req.Status() != leave.StatusPending || req.Type() != leave.TypeVacation || req.Period().Days() != 5 {
		t.Fatalf("unexpected request %+v", req.Snapshot())
	}
	if req.Snapshot().ApprovedBy != nil {
		t.Fatalf("expected no approver")
	}
}

func TestLeaveRequestRepository_FindByIDNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leave_requests WHERE id = $1`)).
		WithArgs("LEAVE-2025-0404").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = NewLeaveRequestRepository(mock).FindByID(context.Background(), "LEAVE-2025-0404")
	if !errors.Is(err, leave.ErrLeaveNotFound) {
		t.Fatalf("expected ErrLeaveNotFound, got %v", err)
	}
}

func TestLeaveRequestRepository_HasOverlapping(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	period, err := shared.NewDateRange(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewDateRange returned error: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`AND status IN ($2, $3)`)).
		WithArgs("EMP-2025-0001", "Pending", "Approved", period.End(), period.Start(), "").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	overlapping, err := NewLeaveRequestRepository(mock).HasOverlapping(context.Background(), "EMP-2025-0001", period, "")
	if err != nil {
		t.Fatalf("HasOverlapping returned error: %v", err)
	}
	if !overlapping {
		t.Fatalf("expected overlap")
	}
}

func TestTranslateLeaveRequestPgError(t *testing.T) {
	t.Parallel()

	if got := translateLeaveRequestPgError(&pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "leave_requests_year_sequence_key"}); !errors.Is(got, shared.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", got)
	}
	if got := translateLeaveRequestPgError(&pgconn.PgError{Code: pgdb.ForeignKeyViolationCode, ConstraintName: "leave_requests_employee_id_fkey"}); !errors.Is(got, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", got)
	}
	if got := translateLeaveRequestPgError(&pgconn.PgError{Code: pgdb.CheckViolationCode, ConstraintName: "leave_requests_period_check"}); !errors.Is(got, shared.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", got)
	}
}

func TestLeaveBalanceRepository_GetForUpdateCreatesRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	key := leave.BalanceKey{EmployeeID: "EMP-2025-0001", Year: 2025, Type: leave.TypeVacation}
	policy := leave.DefaultPolicies().For(leave.TypeVacation)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (employee_id, year, leave_type) DO NOTHING`)).
		WithArgs("EMP-2025-0001", 2025, "Vacation", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("EMP-2025-0001", 2025, "Vacation").
		WillReturnRows(pgxmock.NewRows([]string{
			"employee_id", "year", "leave_type", "opening_balance", "accrued", "used", "pending",
			"adjusted", "carried_over", "forfeited", "accrual_rate", "max_carry_over",
		}).AddRow("EMP-2025-0001", 2025, "Vacation",
			decimal.Zero, decimal.NewFromInt(10), decimal.NewFromInt(2), decimal.NewFromInt(3),
			decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(2), decimal.NewFromInt(5)))

	b, err := NewLeaveBalanceRepository(mock).GetForUpdate(context.Background(), key, policy)
	if err != nil {
		t.Fatalf("GetForUpdate returned error: %v", err)
	}
	if b.Key() != key {
		t.Fatalf("unexpected key %+v", b.Key())
	}
	if !b.Available().Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected 5 available days, got %s", b.Available())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLeaveBalanceRepository_SaveCheckViolation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	key := leave.BalanceKey{EmployeeID: "EMP-2025-0001", Year: 2025, Type: leave.TypeVacation}
	b, err := leave.NewBalance(key, leave.DefaultPolicies().For(leave.TypeVacation))
	if err != nil {
		t.Fatalf("NewBalance returned error: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO leave_balances`)).
		WithArgs(anyArgs(12)...).
		WillReturnError(&pgconn.PgError{Code: pgdb.CheckViolationCode, ConstraintName: "leave_balances_available_check"})

	err = NewLeaveBalanceRepository(mock).Save(context.Background(), b)
	if !errors.Is(err, leave.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestLeaveAccrualRepository_RecordIgnoresDuplicates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	accrual := leave.Accrual{
		ID:            "3b0b3f38-6d1f-4c8e-9f0a-1a2b3c4d5e6f",
		EmployeeID:    "EMP-2025-0001",
		Type:          leave.TypeVacation,
		Year:          2025,
		Period:        "2025-03",
		Kind:          leave.AccrualScheduled,
		Days:          decimal.NewFromInt(2),
		BalanceBefore: decimal.NewFromInt(4),
		BalanceAfter:  decimal.NewFromInt(6),
		Reason:        "monthly accrual",
		AccruedAt:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	repo := NewLeaveAccrualRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO leave_accruals`)).
		WithArgs(anyArgs(11)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO leave_accruals`)).
		WithArgs(anyArgs(11)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	first, err := repo.Record(context.Background(), accrual)
	if err != nil || !first {
		t.Fatalf("expected first record to be applied, got %v, %v", first, err)
	}
	second, err := repo.Record(context.Background(), accrual)
	if err != nil || second {
		t.Fatalf("expected duplicate to be ignored, got %v, %v", second, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
