package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const employeeColumns = `
        id, first_name, middle_name, last_name, email, phone, date_of_birth,
        position, salary_amount, salary_currency, pay_frequency, location,
        remote_policy, remote_days, status, hire_date,
        termination_date, last_working_day, termination_type, termination_reason,
        position_history, location_history`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// NextIdentity は year の最大連番 + 1 で社員番号を採番します。
func (r *EmployeeRepository) NextIdentity(ctx context.Context, year int) (employee.ID, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var next int
	if err := exec.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0) + 1 FROM employees WHERE hire_year = $1`, year).Scan(&next); err != nil {
		return "", translateEmployeePgError(err)
	}
	return employee.NewID(year, next)
}

// FindByID は社員番号で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id employee.ID) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT`+employeeColumns+` FROM employees WHERE id = $1`, id.String())
	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email shared.Email) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT`+employeeColumns+` FROM employees WHERE LOWER(email) = LOWER($1)`, email.String())
	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// EmailExists は excludeID 以外の社員が email を使っているかを返します。
func (r *EmployeeRepository) EmailExists(ctx context.Context, email shared.Email, excludeID employee.ID) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) AND id <> $2)`, email.String(), excludeID.String()).Scan(&exists); err != nil {
		return false, translateEmployeePgError(err)
	}
	return exists, nil
}

// Save は社員を挿入し、既存なら上書きします。
func (r *EmployeeRepository) Save(ctx context.Context, e *employee.Employee) error {
	s := e.Snapshot()
	info := s.PersonalInfo

	positionHistory, err := encodePositionHistory(s.PositionHistory)
	if err != nil {
		return err
	}
	locationHistory, err := encodeLocationHistory(s.LocationHistory)
	if err != nil {
		return err
	}

	var remotePolicy *string
	remoteDays := []string{}
	if s.RemotePolicy != nil {
		kind := string(s.RemotePolicy.Type())
		remotePolicy = &kind
		if s.RemotePolicy.Type() == employee.RemoteHybrid {
			remoteDays = employee.WeekdayNames(s.RemotePolicy.RemoteDays())
		}
	}

	var termDate, lastDay *time.Time
	var termType, termReason *string
	if t := s.Termination; t != nil {
		termDate, lastDay = &t.Date, &t.LastWorkingDay
		termType, termReason = &t.Type, &t.Reason
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err = exec.Exec(ctx, `
        INSERT INTO employees (
            id, hire_year, sequence, first_name, middle_name, last_name, email, phone, date_of_birth,
            position, salary_amount, salary_currency, pay_frequency, location,
            remote_policy, remote_days, status, hire_date,
            termination_date, last_working_day, termination_type, termination_reason,
            position_history, location_history, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, NOW())
        ON CONFLICT (id) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            middle_name = EXCLUDED.middle_name,
            last_name = EXCLUDED.last_name,
            email = EXCLUDED.email,
            phone = EXCLUDED.phone,
            date_of_birth = EXCLUDED.date_of_birth,
            position = EXCLUDED.position,
            salary_amount = EXCLUDED.salary_amount,
            salary_currency = EXCLUDED.salary_currency,
            pay_frequency = EXCLUDED.pay_frequency,
            location = EXCLUDED.location,
            remote_policy = EXCLUDED.remote_policy,
            remote_days = EXCLUDED.remote_days,
            status = EXCLUDED.status,
            termination_date = EXCLUDED.termination_date,
            last_working_day = EXCLUDED.last_working_day,
            termination_type = EXCLUDED.termination_type,
            termination_reason = EXCLUDED.termination_reason,
            position_history = EXCLUDED.position_history,
            location_history = EXCLUDED.location_history,
            updated_at = NOW()
    `,
		s.ID.String(),
		s.ID.Year(),
		s.ID.Sequence(),
		info.FirstName(),
		info.MiddleName(),
		info.LastName(),
		info.Email().String(),
		info.Phone().String(),
		nullableDate(info.DateOfBirth()),
		string(s.Position),
		s.Salary.Annual().Amount(),
		s.Salary.Currency(),
		string(s.Salary.Frequency()),
		string(s.Location),
		nullableString(remotePolicy),
		remoteDays,
		string(s.Status),
		dateOf(s.HireDate),
		nullableDate(termDate),
		nullableDate(lastDay),
		nullableString(termType),
		nullableString(termReason),
		positionHistory,
		locationHistory,
	)
	return translateEmployeePgError(err)
}

// List は社員の一覧を取得します。次ページがある場合は offset をトークンとして返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Position != nil {
		args = append(args, string(*filter.Position))
		conditions = append(conditions, "position = $"+strconv.Itoa(len(args)))
	}
	if filter.Location != nil {
		args = append(args, string(*filter.Location))
		conditions = append(conditions, "location = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `SELECT` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY id
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

// ListActiveIDs は在籍中の社員番号を昇順で返します。
func (r *EmployeeRepository) ListActiveIDs(ctx context.Context) ([]employee.ID, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id FROM employees WHERE status = $1 ORDER BY id`, string(employee.StatusActive))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	var ids []employee.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translateEmployeePgError(err)
		}
		ids = append(ids, employee.ID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return ids, nil
}

type positionChangeRecord struct {
	Position      string    `json:"position"`
	Salary        string    `json:"salary"`
	Currency      string    `json:"currency"`
	Frequency     string    `json:"frequency"`
	EffectiveDate time.Time `json:"effective_date"`
	Reason        string    `json:"reason"`
}

type locationChangeRecord struct {
	Location      string    `json:"location"`
	EffectiveDate time.Time `json:"effective_date"`
	Reason        string    `json:"reason"`
}

func encodePositionHistory(history []employee.PositionChange) ([]byte, error) {
	records := make([]positionChangeRecord, 0, len(history))
	for _, h := range history {
		records = append(records, positionChangeRecord{
			Position:      string(h.Position),
			Salary:        h.Salary.Annual().Amount().StringFixed(2),
			Currency:      h.Salary.Currency(),
			Frequency:     string(h.Salary.Frequency()),
			EffectiveDate: h.EffectiveDate,
			Reason:        h.Reason,
		})
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode position history: %w", err)
	}
	return b, nil
}

func encodeLocationHistory(history []employee.LocationChange) ([]byte, error) {
	records := make([]locationChangeRecord, 0, len(history))
	for _, h := range history {
		records = append(records, locationChangeRecord{
			Location:      string(h.Location),
			EffectiveDate: h.EffectiveDate,
			Reason:        h.Reason,
		})
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode location history: %w", err)
	}
	return b, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id              string
		firstName       string
		middleName      string
		lastName        string
		email           string
		phone           string
		dateOfBirth     sql.NullTime
		position        string
		salaryAmount    decimal.Decimal
		salaryCurrency  string
		payFrequency    string
		location        string
		remotePolicy    sql.NullString
		remoteDays      []string
		status          string
		hireDate        time.Time
		terminationDate sql.NullTime
		lastWorkingDay  sql.NullTime
		terminationType sql.NullString
		terminationNote sql.NullString
		positionHistory []byte
		locationHistory []byte
	)

	if err := row.Scan(
		&id,
		&firstName,
		&middleName,
		&lastName,
		&email,
		&phone,
		&dateOfBirth,
		&position,
		&salaryAmount,
		&salaryCurrency,
		&payFrequency,
		&location,
		&remotePolicy,
		&remoteDays,
		&status,
		&hireDate,
		&terminationDate,
		&lastWorkingDay,
		&terminationType,
		&terminationNote,
		&positionHistory,
		&locationHistory,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	decodeErr := func(err error) error {
		return fmt.Errorf("postgres: decode employee %s: %w", id, err)
	}

	mail, err := shared.NewEmail(email)
	if err != nil {
		return nil, decodeErr(err)
	}
	tel, err := shared.NewPhoneNumber(phone)
	if err != nil {
		return nil, decodeErr(err)
	}
	info, err := employee.NewPersonalInfo(firstName, middleName, lastName, mail, tel, datePtr(dateOfBirth))
	if err != nil {
		return nil, decodeErr(err)
	}
	salary, err := employee.ParseSalary(salaryAmount.String(), salaryCurrency, employee.PayFrequency(payFrequency))
	if err != nil {
		return nil, decodeErr(err)
	}
	empStatus, err := employee.ParseStatus(status)
	if err != nil {
		return nil, decodeErr(err)
	}

	var policy employee.RemoteWorkPolicy
	if remotePolicy.Valid {
		policy, err = employee.ParseRemoteWorkPolicy(remotePolicy.String, remoteDays)
		if err != nil {
			return nil, decodeErr(err)
		}
	}

	var termination *employee.Termination
	if terminationDate.Valid {
		termination = &employee.Termination{
			Date:           dateOf(terminationDate.Time),
			LastWorkingDay: dateOf(lastWorkingDay.Time),
			Type:           terminationType.String,
			Reason:         terminationNote.String,
		}
	}

	positions, err := decodePositionHistory(positionHistory)
	if err != nil {
		return nil, decodeErr(err)
	}
	locations, err := decodeLocationHistory(locationHistory)
	if err != nil {
		return nil, decodeErr(err)
	}

	return employee.Reconstitute(employee.Snapshot{
		ID:              employee.ID(id),
		PersonalInfo:    info,
		Position:        employee.Position(position),
		Salary:          salary,
		Location:        employee.WorkLocation(location),
		RemotePolicy:    policy,
		Status:          empStatus,
		HireDate:        dateOf(hireDate),
		Termination:     termination,
		PositionHistory: positions,
		LocationHistory: locations,
	}), nil
}

func decodePositionHistory(raw []byte) ([]employee.PositionChange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []positionChangeRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	history := make([]employee.PositionChange, 0, len(records))
	for _, rec := range records {
		salary, err := employee.ParseSalary(rec.Salary, rec.Currency, employee.PayFrequency(rec.Frequency))
		if err != nil {
			return nil, err
		}
		history = append(history, employee.PositionChange{
			Position:      employee.Position(rec.Position),
			Salary:        salary,
			EffectiveDate: rec.EffectiveDate,
			Reason:        rec.Reason,
		})
	}
	return history, nil
}

func decodeLocationHistory(raw []byte) ([]employee.LocationChange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []locationChangeRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	history := make([]employee.LocationChange, 0, len(records))
	for _, rec := range records {
		history = append(history, employee.LocationChange{
			Location:      employee.WorkLocation(rec.Location),
			EffectiveDate: rec.EffectiveDate,
			Reason:        rec.Reason,
		})
	}
	return history, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	code, constraint, ok := pgdb.PgErrorCode(err)
	if !ok {
		return err
	}
	switch code {
	case pgdb.UniqueViolationCode:
		switch constraint {
		case "employees_email_key":
			return employee.ErrEmailAlreadyExists
		case "employees_pkey", "employees_year_sequence_key":
			// 同時採番の衝突は再試行で解消する
			return fmt.Errorf("%w: %w", shared.ErrConflict, err)
		}
	case pgdb.CheckViolationCode:
		switch constraint {
		case "employees_last_day_check":
			return employee.ErrLastWorkingDayAfterTerm
		case "employees_salary_amount_check":
			return employee.ErrSalaryBelowMinimum
		}
	}
	return pgdb.TranslateConflict(err)
}
