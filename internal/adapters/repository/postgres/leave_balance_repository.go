package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
)

const leaveBalanceColumns = `
        employee_id, year, leave_type, opening_balance, accrued, used, pending,
        adjusted, carried_over, forfeited, accrual_rate, max_carry_over`

// LeaveBalanceRepository は休暇残高台帳の PostgreSQL 実装です。
// 台帳行は (employee_id, year, leave_type) ごとに 1 行で、更新は GetForUpdate の行ロック下で行います。
type LeaveBalanceRepository struct {
	pool pgdb.Queryer
}

func NewLeaveBalanceRepository(pool pgdb.Queryer) *LeaveBalanceRepository {
	return &LeaveBalanceRepository{pool: pool}
}

// GetForUpdate は台帳行が無ければ policy の付与率で作成し、SELECT ... FOR UPDATE で行ロックを取得して返します。
// ロックはトランザクション終了まで保持されます。
func (r *LeaveBalanceRepository) GetForUpdate(ctx context.Context, key leave.BalanceKey, policy leave.Policy) (*leave.Balance, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        INSERT INTO leave_balances (employee_id, year, leave_type, accrual_rate, max_carry_over)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (employee_id, year, leave_type) DO NOTHING
    `,
		key.EmployeeID.String(),
		key.Year,
		string(key.Type),
		policy.AccrualRate,
		policy.MaxCarryOver,
	); err != nil {
		return nil, translateLeaveBalancePgError(err)
	}

	row := exec.QueryRow(ctx, `
        SELECT`+leaveBalanceColumns+`
          FROM leave_balances
         WHERE employee_id = $1 AND year = $2 AND leave_type = $3
           FOR UPDATE
    `, key.EmployeeID.String(), key.Year, string(key.Type))
	b, err := scanLeaveBalance(row)
	if err != nil {
		return nil, translateLeaveBalancePgError(err)
	}
	return b, nil
}

func (r *LeaveBalanceRepository) Get(ctx context.Context, key leave.BalanceKey) (*leave.Balance, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+leaveBalanceColumns+`
          FROM leave_balances
         WHERE employee_id = $1 AND year = $2 AND leave_type = $3
    `, key.EmployeeID.String(), key.Year, string(key.Type))
	b, err := scanLeaveBalance(row)
	if err != nil {
		return nil, translateLeaveBalancePgError(err)
	}
	return b, nil
}

func (r *LeaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID employee.ID, year int) ([]*leave.Balance, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+leaveBalanceColumns+`
          FROM leave_balances
         WHERE employee_id = $1 AND year = $2
         ORDER BY leave_type
    `, employeeID.String(), year)
	if err != nil {
		return nil, translateLeaveBalancePgError(err)
	}
	defer rows.Close()

	var balances []*leave.Balance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, translateLeaveBalancePgError(err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translateLeaveBalancePgError(err)
	}
	return balances, nil
}

func (r *LeaveBalanceRepository) Save(ctx context.Context, b *leave.Balance) error {
	s := b.Snapshot()
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO leave_balances (
            employee_id, year, leave_type, opening_balance, accrued, used, pending,
            adjusted, carried_over, forfeited, accrual_rate, max_carry_over, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
        ON CONFLICT (employee_id, year, leave_type) DO UPDATE SET
            opening_balance = EXCLUDED.opening_balance,
            accrued = EXCLUDED.accrued,
            used = EXCLUDED.used,
            pending = EXCLUDED.pending,
            adjusted = EXCLUDED.adjusted,
            carried_over = EXCLUDED.carried_over,
            forfeited = EXCLUDED.forfeited,
            updated_at = NOW()
    `,
		s.Key.EmployeeID.String(),
		s.Key.Year,
		string(s.Key.Type),
		s.Opening,
		s.Accrued,
		s.Used,
		s.Pending,
		s.Adjusted,
		s.CarriedOver,
		s.Forfeited,
		s.AccrualRate,
		s.MaxCarryOver,
	)
	return translateLeaveBalancePgError(err)
}

func scanLeaveBalance(row pgx.Row) (*leave.Balance, error) {
	var (
		employeeID string
		year       int
		leaveType  string
		s          leave.BalanceSnapshot
	)
	if err := row.Scan(
		&employeeID,
		&year,
		&leaveType,
		&s.Opening,
		&s.Accrued,
		&s.Used,
		&s.Pending,
		&s.Adjusted,
		&s.CarriedOver,
		&s.Forfeited,
		&s.AccrualRate,
		&s.MaxCarryOver,
	); err != nil {
		return nil, err
	}
	s.Key = leave.BalanceKey{EmployeeID: employee.ID(employeeID), Year: year, Type: leave.Type(leaveType)}
	return leave.ReconstituteBalance(s), nil
}

func translateLeaveBalancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.ErrBalanceNotFound
	}

	code, constraint, ok := pgdb.PgErrorCode(err)
	if !ok {
		return err
	}
	switch code {
	case pgdb.ForeignKeyViolationCode:
		return employee.ErrEmployeeNotFound
	case pgdb.CheckViolationCode:
		// 集約の検証を通った値がここで弾かれるのは台帳の同時更新を意味する
		return fmt.Errorf("%w: constraint %s", leave.ErrInsufficientBalance, constraint)
	}
	return pgdb.TranslateConflict(err)
}
