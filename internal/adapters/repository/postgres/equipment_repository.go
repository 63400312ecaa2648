package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/equipment"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const equipmentColumns = `
        e.id, e.asset_tag, e.serial_number, e.type, e.brand, e.model,
        e.purchase_date, e.purchase_price, e.currency, e.status, e.decommission_reason`

// EquipmentRepository は備品と貸出履歴の PostgreSQL 実装です。
type EquipmentRepository struct {
	pool pgdb.Queryer
}

func NewEquipmentRepository(pool pgdb.Queryer) *EquipmentRepository {
	return &EquipmentRepository{pool: pool}
}

// NextAssetTag は year の資産タグ連番の最大値 + 1 を返します。
func (r *EquipmentRepository) NextAssetTag(ctx context.Context, year int) (equipment.AssetTag, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var next int
	if err := exec.QueryRow(ctx, `
        SELECT COALESCE(MAX(CAST(SUBSTRING(asset_tag FROM 12 FOR 4) AS INTEGER)), 0) + 1
          FROM equipment
         WHERE asset_tag LIKE $1
    `, fmt.Sprintf("ASSET-%04d-%%", year)).Scan(&next); err != nil {
		return "", translateEquipmentPgError(err)
	}
	return equipment.NewAssetTag(year, next)
}

func (r *EquipmentRepository) FindByID(ctx context.Context, id equipment.ID) (*equipment.Equipment, error) {
	return r.findOne(ctx, `e.id = $1`, id.String())
}

func (r *EquipmentRepository) FindByAssetTag(ctx context.Context, tag equipment.AssetTag) (*equipment.Equipment, error) {
	return r.findOne(ctx, `e.asset_tag = $1`, tag.String())
}

func (r *EquipmentRepository) FindBySerialNumber(ctx context.Context, serial equipment.SerialNumber) (*equipment.Equipment, error) {
	return r.findOne(ctx, `UPPER(e.serial_number) = UPPER($1)`, serial.String())
}

// FindAssignedTo は employeeID に貸出中の備品を資産タグ順に返します。
func (r *EquipmentRepository) FindAssignedTo(ctx context.Context, employeeID employee.ID) ([]*equipment.Equipment, error) {
	return r.findMany(ctx, `
        SELECT`+equipmentColumns+`
          FROM equipment e
          JOIN equipment_assignments a ON a.equipment_id = e.id AND a.returned_at IS NULL
         WHERE a.employee_id = $1
         ORDER BY e.asset_tag
    `, employeeID.String())
}

// List はフィルタに一致する備品を資産タグ順に返します。
func (r *EquipmentRepository) List(ctx context.Context, filter equipment.ListFilter) ([]*equipment.Equipment, error) {
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "e.status = $"+strconv.Itoa(len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conditions = append(conditions, "e.type = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	return r.findMany(ctx, `SELECT`+equipmentColumns+`
          FROM equipment e`+whereClause+`
         ORDER BY e.asset_tag
         LIMIT `+limitPlaceholder+`
        OFFSET `+offsetPlaceholder, args...)
}

// Save は備品行と貸出行を upsert します。貸出行は追加と返却のみで削除されません。
func (r *EquipmentRepository) Save(ctx context.Context, e *equipment.Equipment) error {
	s := e.Snapshot()
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	if _, err := exec.Exec(ctx, `
        INSERT INTO equipment (id, asset_tag, serial_number, type, brand, model, purchase_date, purchase_price, currency, status, decommission_reason, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
        ON CONFLICT (id) DO UPDATE SET
            status = EXCLUDED.status,
            decommission_reason = EXCLUDED.decommission_reason,
            updated_at = NOW()
    `,
		s.ID.String(),
		s.AssetTag.String(),
		s.SerialNumber.String(),
		string(s.Type),
		s.Brand,
		s.Model,
		dateOf(s.PurchaseDate),
		s.PurchasePrice.Amount(),
		s.PurchasePrice.Currency(),
		string(s.Status),
		s.DecommissionReason,
	); err != nil {
		return translateEquipmentPgError(err)
	}

	assignments := s.History
	if s.Current != nil {
		assignments = append(assignments, *s.Current)
	}
	for _, a := range assignments {
		if _, err := exec.Exec(ctx, `
            INSERT INTO equipment_assignments (id, equipment_id, employee_id, assigned_at, returned_at, return_condition)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (id) DO UPDATE SET
                returned_at = EXCLUDED.returned_at,
                return_condition = EXCLUDED.return_condition
        `,
			a.ID(),
			s.ID.String(),
			a.EmployeeID().String(),
			a.AssignedAt().UTC(),
			nullableTime(a.ReturnedAt()),
			a.Condition(),
		); err != nil {
			return translateEquipmentPgError(err)
		}
	}
	return nil
}

func (r *EquipmentRepository) findOne(ctx context.Context, condition string, arg any) (*equipment.Equipment, error) {
	items, err := r.findMany(ctx, `SELECT`+equipmentColumns+` FROM equipment e WHERE `+condition, arg)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, equipment.ErrEquipmentNotFound
	}
	return items[0], nil
}

func (r *EquipmentRepository) findMany(ctx context.Context, query string, args ...any) ([]*equipment.Equipment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEquipmentPgError(err)
	}
	defer rows.Close()

	var snapshots []equipment.Snapshot
	for rows.Next() {
		s, err := scanEquipment(rows)
		if err != nil {
			return nil, translateEquipmentPgError(err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEquipmentPgError(err)
	}
	rows.Close()

	if len(snapshots) == 0 {
		return nil, nil
	}

	ids := make([]string, len(snapshots))
	for i, s := range snapshots {
		ids[i] = s.ID.String()
	}
	assignments, err := r.loadAssignments(ctx, exec, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*equipment.Equipment, 0, len(snapshots))
	for _, s := range snapshots {
		for _, a := range assignments[s.ID] {
			if a.IsActive() {
				current := a
				s.Current = &current
				continue
			}
			s.History = append(s.History, a)
		}
		items = append(items, equipment.Reconstitute(s))
	}
	return items, nil
}

func (r *EquipmentRepository) loadAssignments(ctx context.Context, exec pgdb.Queryer, ids []string) (map[equipment.ID][]equipment.Assignment, error) {
	rows, err := exec.Query(ctx, `
        SELECT id, equipment_id, employee_id, assigned_at, returned_at, return_condition
          FROM equipment_assignments
         WHERE equipment_id = ANY($1)
         ORDER BY assigned_at, id
    `, ids)
	if err != nil {
		return nil, translateEquipmentPgError(err)
	}
	defer rows.Close()

	out := make(map[equipment.ID][]equipment.Assignment, len(ids))
	for rows.Next() {
		var (
			id          string
			equipmentID string
			employeeID  string
			assignedAt  time.Time
			returnedAt  sql.NullTime
			condition   string
		)
		if err := rows.Scan(&id, &equipmentID, &employeeID, &assignedAt, &returnedAt, &condition); err != nil {
			return nil, translateEquipmentPgError(err)
		}
		key := equipment.ID(equipmentID)
		out[key] = append(out[key], equipment.RestoreAssignment(id, employee.ID(employeeID), assignedAt.UTC(), timePtr(returnedAt), condition))
	}
	if err := rows.Err(); err != nil {
		return nil, translateEquipmentPgError(err)
	}
	return out, nil
}

func scanEquipment(row pgx.Row) (equipment.Snapshot, error) {
	var (
		id                 string
		assetTag           string
		serialNumber       string
		equipmentType      string
		brand              string
		model              string
		purchaseDate       time.Time
		purchasePrice      decimal.Decimal
		currency           string
		status             string
		decommissionReason string
	)
	if err := row.Scan(
		&id,
		&assetTag,
		&serialNumber,
		&equipmentType,
		&brand,
		&model,
		&purchaseDate,
		&purchasePrice,
		&currency,
		&status,
		&decommissionReason,
	); err != nil {
		return equipment.Snapshot{}, err
	}

	price, err := shared.NewMoney(purchasePrice, currency)
	if err != nil {
		return equipment.Snapshot{}, fmt.Errorf("postgres: decode equipment %s: %w", id, err)
	}
	return equipment.Snapshot{
		ID:                 equipment.ID(id),
		AssetTag:           equipment.AssetTag(assetTag),
		SerialNumber:       equipment.SerialNumber(serialNumber),
		Type:               equipment.Type(equipmentType),
		Brand:              brand,
		Model:              model,
		PurchaseDate:       dateOf(purchaseDate),
		PurchasePrice:      price,
		Status:             equipment.Status(status),
		DecommissionReason: decommissionReason,
	}, nil
}

func translateEquipmentPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return equipment.ErrEquipmentNotFound
	}

	code, constraint, ok := pgdb.PgErrorCode(err)
	if !ok {
		return err
	}
	switch code {
	case pgdb.UniqueViolationCode:
		switch constraint {
		case "equipment_serial_number_key":
			return equipment.ErrSerialNumberExists
		case "equipment_asset_tag_key", "equipment_assignments_active_key":
			return fmt.Errorf("%w: %w", shared.ErrConflict, err)
		}
	case pgdb.ForeignKeyViolationCode:
		if constraint == "equipment_assignments_employee_id_fkey" {
			return employee.ErrEmployeeNotFound
		}
	}
	return pgdb.TranslateConflict(err)
}
