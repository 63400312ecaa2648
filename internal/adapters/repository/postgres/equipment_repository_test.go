package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/equipment"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

const testEquipmentID = "7d6f3c1e-58a4-4f1e-9c53-2a0b6f1d9e10"

func TestEquipmentRepository_NextAssetTag(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM equipment WHERE asset_tag LIKE $1`)).
		WithArgs("ASSET-2025-%").
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(7))

	tag, err := NewEquipmentRepository(mock).NextAssetTag(context.Background(), 2025)
	if err != nil {
		t.Fatalf("NextAssetTag returned error: %v", err)
	}
	if tag != "ASSET-2025-0007" {
		t.Fatalf("expected ASSET-2025-0007, got %s", tag)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEquipmentRepository_FindByIDLoadsAssignments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	purchased := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	assigned := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM equipment e WHERE e.id = $1`)).
		WithArgs(testEquipmentID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "asset_tag", "serial_number", "type", "brand", "model",
			"purchase_date", "purchase_price", "currency", "status", "decommission_reason",
		}).AddRow(testEquipmentID, "ASSET-2024-0003", "C02XK1ABCD", "Laptop", "Apple", "MacBook Pro",
			purchased, decimal.NewFromInt(2499), "USD", "Assigned", ""))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM equipment_assignments WHERE equipment_id = ANY($1)`)).
		WithArgs([]string{testEquipmentID}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "equipment_id", "employee_id", "assigned_at", "returned_at", "return_condition",
		}).AddRow("a1", testEquipmentID, "EMP-2025-0001", assigned, nil, ""))

	found, err := NewEquipmentRepository(mock).FindByID(context.Background(), testEquipmentID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if found.Status() != equipment.StatusAssigned || found.AssetTag() != "ASSET-2024-0003" {
		t.Fatalf("unexpected equipment %+v", found.Snapshot())
	}
	current := found.CurrentAssignment()
	if current == nil || current.EmployeeID() != "EMP-2025-0001" || !current.AssignedAt().Equal(assigned) {
		t.Fatalf("unexpected current assignment %+v", current)
	}
	if !found.PurchasePrice().Amount().Equal(decimal.NewFromInt(2499)) {
		t.Fatalf("unexpected price %s", found.PurchasePrice())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEquipmentRepository_FindByIDNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM equipment e WHERE e.id = $1`)).
		WithArgs(testEquipmentID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = NewEquipmentRepository(mock).FindByID(context.Background(), testEquipmentID)
	if !errors.Is(err, equipment.ErrEquipmentNotFound) {
		t.Fatalf("expected ErrEquipmentNotFound, got %v", err)
	}
}

func TestEquipmentRepository_SaveWritesAssignments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	price, err := shared.NewMoney(decimal.NewFromInt(1200), "USD")
	if err != nil {
		t.Fatalf("NewMoney returned error: %v", err)
	}
	item, err := equipment.Add(testEquipmentID, "ASSET-2025-0001", "SN-000123", equipment.TypeLaptop, "Dell", "XPS 13", now.AddDate(0, -1, 0), price, now)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := item.Issue(employee.ID("EMP-2025-0001"), now, now); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO equipment (`)).
		WithArgs(anyArgs(11)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO equipment_assignments`)).
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := NewEquipmentRepository(mock).Save(context.Background(), item); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslateEquipmentPgError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "serial", err: &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "equipment_serial_number_key"}, want: equipment.ErrSerialNumberExists},
		{name: "asset tag race", err: &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "equipment_asset_tag_key"}, want: shared.ErrConflict},
		{name: "double assignment", err: &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "equipment_assignments_active_key"}, want: shared.ErrConflict},
		{name: "unknown employee", err: &pgconn.PgError{Code: pgdb.ForeignKeyViolationCode, ConstraintName: "equipment_assignments_employee_id_fkey"}, want: employee.ErrEmployeeNotFound},
	}
	for _, tc := range cases {
		if got := translateEquipmentPgError(tc.err); !errors.Is(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
