package postgres

import (
	"context"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

// LeaveAccrualRepository は付与記録の PostgreSQL 実装です。
type LeaveAccrualRepository struct {
	pool pgdb.Queryer
}

func NewLeaveAccrualRepository(pool pgdb.Queryer) *LeaveAccrualRepository {
	return &LeaveAccrualRepository{pool: pool}
}

// Record は付与記録を挿入します。Scheduled / CarryOver は (社員, 種別, 期間, 区分) の部分一意インデックスで
// 重複を無視し、その場合は false を返します。
func (r *LeaveAccrualRepository) Record(ctx context.Context, a leave.Accrual) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        INSERT INTO leave_accruals (id, employee_id, leave_type, year, period, kind, days, balance_before, balance_after, reason, accrued_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (employee_id, leave_type, period, kind) WHERE kind IN ('Scheduled', 'CarryOver') DO NOTHING
    `,
		a.ID,
		a.EmployeeID.String(),
		string(a.Type),
		a.Year,
		a.Period,
		string(a.Kind),
		a.Days,
		a.BalanceBefore,
		a.BalanceAfter,
		a.Reason,
		a.AccruedAt.UTC(),
	)
	if err != nil {
		return false, translateLeaveBalancePgError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *LeaveAccrualRepository) ListByEmployee(ctx context.Context, employeeID employee.ID, year int) ([]leave.Accrual, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, employee_id, leave_type, year, period, kind, days, balance_before, balance_after, reason, accrued_at
          FROM leave_accruals
         WHERE employee_id = $1 AND year = $2
         ORDER BY accrued_at, id
    `, employeeID.String(), year)
	if err != nil {
		return nil, translateLeaveBalancePgError(err)
	}
	defer rows.Close()

	var accruals []leave.Accrual
	for rows.Next() {
		var (
			a          leave.Accrual
			employeeID string
			leaveType  string
			kind       string
			days       decimal.Decimal
			before     decimal.Decimal
			after      decimal.Decimal
			accruedAt  time.Time
		)
		if err := rows.Scan(&a.ID, &employeeID, &leaveType, &a.Year, &a.Period, &kind, &days, &before, &after, &a.Reason, &accruedAt); err != nil {
			return nil, translateLeaveBalancePgError(err)
		}
		a.EmployeeID = employee.ID(employeeID)
		a.Type = leave.Type(leaveType)
		a.Kind = leave.AccrualKind(kind)
		a.Days, a.BalanceBefore, a.BalanceAfter = days, before, after
		a.AccruedAt = accruedAt.UTC()
		accruals = append(accruals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translateLeaveBalancePgError(err)
	}
	return accruals, nil
}
