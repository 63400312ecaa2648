package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
)

const leaveRequestColumns = `
        id, employee_id, leave_type, start_date, end_date, reason, status, requested_at,
        approved_by, approved_at, rejected_by, rejected_at, rejection_reason, cancelled_at, completed_at`

// LeaveRequestRepository は休暇申請の PostgreSQL 実装です。
type LeaveRequestRepository struct {
	pool pgdb.Queryer
}

func NewLeaveRequestRepository(pool pgdb.Queryer) *LeaveRequestRepository {
	return &LeaveRequestRepository{pool: pool}
}

func (r *LeaveRequestRepository) NextIdentity(ctx context.Context, year int) (leave.ID, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var next int
	if err := exec.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0) + 1 FROM leave_requests WHERE request_year = $1`, year).Scan(&next); err != nil {
		return "", translateLeaveRequestPgError(err)
	}
	return leave.NewID(year, next)
}

func (r *LeaveRequestRepository) FindByID(ctx context.Context, id leave.ID) (*leave.Request, error) {
	requests, err := r.query(ctx, `SELECT`+leaveRequestColumns+` FROM leave_requests WHERE id = $1`, id.String())
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, leave.ErrLeaveNotFound
	}
	return requests[0], nil
}

func (r *LeaveRequestRepository) FindByEmployee(ctx context.Context, employeeID employee.ID) ([]*leave.Request, error) {
	return r.query(ctx, `SELECT`+leaveRequestColumns+` FROM leave_requests WHERE employee_id = $1 ORDER BY start_date, id`, employeeID.String())
}

func (r *LeaveRequestRepository) FindPending(ctx context.Context) ([]*leave.Request, error) {
	return r.query(ctx, `SELECT`+leaveRequestColumns+` FROM leave_requests WHERE status = $1 ORDER BY requested_at, id`, string(leave.StatusPending))
}

// FindApprovedEndedBefore は終了日が date より前の承認済み申請を返します。
func (r *LeaveRequestRepository) FindApprovedEndedBefore(ctx context.Context, date time.Time) ([]*leave.Request, error) {
	return r.query(ctx, `SELECT`+leaveRequestColumns+` FROM leave_requests WHERE status = $1 AND end_date < $2 ORDER BY end_date, id`,
		string(leave.StatusApproved), dateOf(date))
}

// FindApprovedInPeriod は period と 1 日でも重なる承認済み申請を返します。
func (r *LeaveRequestRepository) FindApprovedInPeriod(ctx context.Context, period shared.DateRange) ([]*leave.Request, error) {
	return r.query(ctx, `SELECT`+leaveRequestColumns+` FROM leave_requests WHERE status = $1 AND start_date <= $2 AND end_date >= $3 ORDER BY start_date, id`,
		string(leave.StatusApproved), period.End(), period.Start())
}

// HasOverlapping は excludeID 以外に period と重なる Pending / Approved の申請があるかを返します。
func (r *LeaveRequestRepository) HasOverlapping(ctx context.Context, employeeID employee.ID, period shared.DateRange, excludeID leave.ID) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
              FROM leave_requests
             WHERE employee_id = $1
               AND status IN ($2, $3)
               AND start_date <= $4
               AND end_date >= $5
               AND id <> $6
        )
    `,
		employeeID.String(),
		string(leave.StatusPending),
		string(leave.StatusApproved),
		period.End(),
		period.Start(),
		excludeID.String(),
	).Scan(&exists); err != nil {
		return false, translateLeaveRequestPgError(err)
	}
	return exists, nil
}

func (r *LeaveRequestRepository) Save(ctx context.Context, request *leave.Request) error {
	s := request.Snapshot()
	year, sequence := s.ID.Parts()

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO leave_requests (
            id, request_year, sequence, employee_id, leave_type, start_date, end_date, reason, status, requested_at,
            approved_by, approved_at, rejected_by, rejected_at, rejection_reason, cancelled_at, completed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        ON CONFLICT (id) DO UPDATE SET
            status = EXCLUDED.status,
            approved_by = EXCLUDED.approved_by,
            approved_at = EXCLUDED.approved_at,
            rejected_by = EXCLUDED.rejected_by,
            rejected_at = EXCLUDED.rejected_at,
            rejection_reason = EXCLUDED.rejection_reason,
            cancelled_at = EXCLUDED.cancelled_at,
            completed_at = EXCLUDED.completed_at
    `,
		s.ID.String(),
		year,
		sequence,
		s.EmployeeID.String(),
		string(s.Type),
		s.Period.Start(),
		s.Period.End(),
		s.Reason,
		string(s.Status),
		s.RequestedAt.UTC(),
		nullableEmployeeID(s.ApprovedBy),
		nullableTime(s.ApprovedAt),
		nullableEmployeeID(s.RejectedBy),
		nullableTime(s.RejectedAt),
		s.RejectionReason,
		nullableTime(s.CancelledAt),
		nullableTime(s.CompletedAt),
	)
	return translateLeaveRequestPgError(err)
}

func (r *LeaveRequestRepository) query(ctx context.Context, query string, args ...any) ([]*leave.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateLeaveRequestPgError(err)
	}
	defer rows.Close()

	var requests []*leave.Request
	for rows.Next() {
		request, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, translateLeaveRequestPgError(err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, translateLeaveRequestPgError(err)
	}
	return requests, nil
}

func scanLeaveRequest(row pgx.Row) (*leave.Request, error) {
	var (
		id              string
		employeeID      string
		leaveType       string
		startDate       time.Time
		endDate         time.Time
		reason          string
		status          string
		requestedAt     time.Time
		approvedBy      sql.NullString
		approvedAt      sql.NullTime
		rejectedBy      sql.NullString
		rejectedAt      sql.NullTime
		rejectionReason string
		cancelledAt     sql.NullTime
		completedAt     sql.NullTime
	)
	if err := row.Scan(
		&id,
		&employeeID,
		&leaveType,
		&startDate,
		&endDate,
		&reason,
		&status,
		&requestedAt,
		&approvedBy,
		&approvedAt,
		&rejectedBy,
		&rejectedAt,
		&rejectionReason,
		&cancelledAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	period, err := shared.NewDateRange(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode leave request %s: %w", id, err)
	}
	return leave.ReconstituteRequest(leave.RequestSnapshot{
		ID:              leave.ID(id),
		EmployeeID:      employee.ID(employeeID),
		Type:            leave.Type(leaveType),
		Period:          period,
		Reason:          reason,
		Status:          leave.Status(status),
		RequestedAt:     requestedAt.UTC(),
		ApprovedBy:      employeeIDPtr(approvedBy),
		ApprovedAt:      timePtr(approvedAt),
		RejectedBy:      employeeIDPtr(rejectedBy),
		RejectedAt:      timePtr(rejectedAt),
		RejectionReason: rejectionReason,
		CancelledAt:     timePtr(cancelledAt),
		CompletedAt:     timePtr(completedAt),
	}), nil
}

func nullableEmployeeID(id *employee.ID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func employeeIDPtr(value sql.NullString) *employee.ID {
	if !value.Valid {
		return nil
	}
	id := employee.ID(value.String)
	return &id
}

func translateLeaveRequestPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.ErrLeaveNotFound
	}

	code, constraint, ok := pgdb.PgErrorCode(err)
	if !ok {
		return err
	}
	switch code {
	case pgdb.UniqueViolationCode:
		switch constraint {
		case "leave_requests_pkey", "leave_requests_year_sequence_key":
			return fmt.Errorf("%w: %w", shared.ErrConflict, err)
		}
	case pgdb.ForeignKeyViolationCode:
		return employee.ErrEmployeeNotFound
	case pgdb.CheckViolationCode:
		if constraint == "leave_requests_period_check" {
			return shared.ErrInvalidDateRange
		}
	}
	return pgdb.TranslateConflict(err)
}
