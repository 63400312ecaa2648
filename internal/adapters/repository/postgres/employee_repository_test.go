package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

type stubRow struct {
	scanFn func(dest ...any) error
}

func (s stubRow) Scan(dest ...any) error {
	return s.scanFn(dest...)
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func hiredEmployee(t *testing.T, id employee.ID) *employee.Employee {
	t.Helper()
	email, err := shared.NewEmail("jane.doe@example.com")
	if err != nil {
		t.Fatalf("NewEmail returned error: %v", err)
	}
	phone, err := shared.NewPhoneNumber("(415) 555-0100")
	if err != nil {
		t.Fatalf("NewPhoneNumber returned error: %v", err)
	}
	info, err := employee.NewPersonalInfo("Jane", "", "Doe", email, phone, nil)
	if err != nil {
		t.Fatalf("NewPersonalInfo returned error: %v", err)
	}
	salary, err := employee.ParseSalary("85000", "USD", employee.PayAnnual)
	if err != nil {
		t.Fatalf("ParseSalary returned error: %v", err)
	}
	hired := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	e, err := employee.Hire(id, info, employee.PositionDeveloper, salary, employee.LocationAustinOffice, hired, hired)
	if err != nil {
		t.Fatalf("Hire returned error: %v", err)
	}
	return e
}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	hireDate := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	dob := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)

	row := stubRow{scanFn: func(dest ...any) error {
		if len(dest) != 22 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "EMP-2025-0001"
		*(dest[1].(*string)) = "Jane"
		*(dest[2].(*string)) = ""
		*(dest[3].(*string)) = "Doe"
		*(dest[4].(*string)) = "jane.doe@example.com"
		*(dest[5].(*string)) = "4155550100"
		*(dest[6].(*sql.NullTime)) = sql.NullTime{Time: dob, Valid: true}
		*(dest[7].(*string)) = string(employee.PositionSeniorDeveloper)
		*(dest[8].(*decimal.Decimal)) = decimal.RequireFromString("120000.00")
		*(dest[9].(*string)) = "USD"
		*(dest[10].(*string)) = string(employee.PayMonthly)
		*(dest[11].(*string)) = string(employee.LocationRemote)
		*(dest[12].(*sql.NullString)) = sql.NullString{String: string(employee.RemoteHybrid), Valid: true}
		*(dest[13].(*[]string)) = []string{"Monday", "Friday"}
		*(dest[14].(*string)) = string(employee.StatusTerminated)
		*(dest[15].(*time.Time)) = hireDate
		*(dest[16].(*sql.NullTime)) = sql.NullTime{Time: time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), Valid: true}
		*(dest[17].(*sql.NullTime)) = sql.NullTime{Time: time.Date(2025, 9, 26, 0, 0, 0, 0, time.UTC), Valid: true}
		*(dest[18].(*sql.NullString)) = sql.NullString{String: "Voluntary", Valid: true}
		*(dest[19].(*sql.NullString)) = sql.NullString{String: "relocation", Valid: true}
		*(dest[20].(*[]byte)) = []byte(`[{"position":"Developer","salary":"85000.00","currency":"USD","frequency":"Annual","effective_date":"2025-06-01T00:00:00Z","reason":"promotion"}]`)
		*(dest[21].(*[]byte)) = []byte(`[]`)
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.EmployeeID() != "EMP-2025-0001" || emp.Position() != employee.PositionSeniorDeveloper {
		t.Fatalf("unexpected employee %+v", emp.Snapshot())
	}
	if !emp.Salary().Annual().Amount().Equal(decimal.NewFromInt(120000)) || emp.Salary().Frequency() != employee.PayMonthly {
		t.Fatalf("unexpected salary %+v", emp.Salary())
	}
	if dobGot := emp.PersonalInfo().DateOfBirth(); dobGot == nil || !dobGot.Equal(dob) {
		t.Fatalf("expected date of birth %v, got %v", dob, dobGot)
	}
	policy := emp.RemoteWorkPolicy()
	if policy == nil || policy.Type() != employee.RemoteHybrid || len(policy.RemoteDays()) != 2 {
		t.Fatalf("unexpected remote policy %+v", policy)
	}
	if !emp.IsTerminated() || emp.Termination() == nil || emp.Termination().Type != "Voluntary" {
		t.Fatalf("unexpected termination %+v", emp.Termination())
	}
	history := emp.PositionHistory()
	if len(history) != 1 || history[0].Position != employee.PositionDeveloper || history[0].Reason != "promotion" {
		t.Fatalf("unexpected position history %+v", history)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...any) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "email", err: &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "employees_email_key"}, want: employee.ErrEmailAlreadyExists},
		{name: "sequence race", err: &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "employees_year_sequence_key"}, want: shared.ErrConflict},
		{name: "last day", err: &pgconn.PgError{Code: pgdb.CheckViolationCode, ConstraintName: "employees_last_day_check"}, want: employee.ErrLastWorkingDayAfterTerm},
		{name: "serialization", err: &pgconn.PgError{Code: pgdb.SerializationFailureCode}, want: shared.ErrConflict},
		{name: "no rows", err: pgx.ErrNoRows, want: employee.ErrEmployeeNotFound},
	}
	for _, tc := range cases {
		if got := translateEmployeePgError(tc.err); !errors.Is(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_NextIdentity(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(sequence), 0) + 1 FROM employees WHERE hire_year = $1`)).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(42))

	id, err := NewEmployeeRepository(mock).NextIdentity(context.Background(), 2025)
	if err != nil {
		t.Fatalf("NextIdentity returned error: %v", err)
	}
	if id != "EMP-2025-0042" {
		t.Fatalf("expected EMP-2025-0042, got %s", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_SaveWithinTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	tm := pgdb.NewTransactionManager(mock)
	e := hiredEmployee(t, "EMP-2025-0001")

	mock.ExpectBeginTx(pgdb.ReadWriteOptions)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO employees`)).
		WithArgs(anyArgs(24)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		return repo.Save(ctx, e)
	}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_SaveDuplicateEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO employees`)).
		WithArgs(anyArgs(24)...).
		WillReturnError(&pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "employees_email_key"})

	err = NewEmployeeRepository(mock).Save(context.Background(), hiredEmployee(t, "EMP-2025-0002"))
	if !errors.Is(err, employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestEmployeeRepository_ListActiveIDs(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM employees WHERE status = $1 ORDER BY id`)).
		WithArgs(string(employee.StatusActive)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("EMP-2025-0001").AddRow("EMP-2025-0003"))

	ids, err := NewEmployeeRepository(mock).ListActiveIDs(context.Background())
	if err != nil {
		t.Fatalf("ListActiveIDs returned error: %v", err)
	}
	if len(ids) != 2 || ids[1] != "EMP-2025-0003" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestEmployeeRepository_ListRejectsInvalidPage(t *testing.T) {
	t.Parallel()

	repo := NewEmployeeRepository(nil)
	if _, _, err := repo.List(context.Background(), employee.ListFilter{Limit: 0}); !errors.Is(err, employee.ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, _, err := repo.List(context.Background(), employee.ListFilter{Limit: 10, Offset: -1}); !errors.Is(err, employee.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
