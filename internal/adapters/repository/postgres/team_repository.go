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
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/team"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
)

const teamColumns = `t.id, t.name, t.description, t.type, t.parent_team_id, t.max_size, t.disbanded`

// TeamRepository はチームと所属メンバーの PostgreSQL 実装です。
type TeamRepository struct {
	pool pgdb.Queryer
}

func NewTeamRepository(pool pgdb.Queryer) *TeamRepository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) NextIdentity(ctx context.Context) (team.ID, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var next int
	if err := exec.QueryRow(ctx, `SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 6) AS INTEGER)), 0) + 1 FROM teams`).Scan(&next); err != nil {
		return "", translateTeamPgError(err)
	}
	return team.NewID(next)
}

func (r *TeamRepository) FindByID(ctx context.Context, id team.ID) (*team.Team, error) {
	teams, err := r.findMany(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id.String())
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, team.ErrTeamNotFound
	}
	return teams[0], nil
}

// FindByMember は employeeID が所属する解散済みでないチームを ID 順に返します。
func (r *TeamRepository) FindByMember(ctx context.Context, employeeID employee.ID) ([]*team.Team, error) {
	return r.findMany(ctx, `
        SELECT `+teamColumns+`
          FROM teams t
          JOIN team_members m ON m.team_id = t.id
         WHERE m.employee_id = $1 AND NOT t.disbanded
         ORDER BY t.id
    `, employeeID.String())
}

func (r *TeamRepository) List(ctx context.Context, filter team.ListFilter) ([]*team.Team, error) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 2)
	if !filter.IncludeDisbanded {
		conditions = append(conditions, "NOT t.disbanded")
	}
	if filter.ParentID != nil {
		args = append(args, filter.ParentID.String())
		conditions = append(conditions, "t.parent_team_id = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	return r.findMany(ctx, `SELECT `+teamColumns+`
          FROM teams t`+whereClause+`
         ORDER BY t.id
         LIMIT `+limitPlaceholder+`
        OFFSET `+offsetPlaceholder, args...)
}

// Save はチーム行を upsert し、メンバー行を集約の状態で置き換えます。
func (r *TeamRepository) Save(ctx context.Context, t *team.Team) error {
	s := t.Snapshot()
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var parentID *string
	if s.ParentID != nil {
		p := s.ParentID.String()
		parentID = &p
	}
	var maxSize any
	if s.MaxSize != nil {
		maxSize = *s.MaxSize
	}

	if _, err := exec.Exec(ctx, `
        INSERT INTO teams (id, name, description, type, parent_team_id, max_size, disbanded, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            max_size = EXCLUDED.max_size,
            disbanded = EXCLUDED.disbanded,
            updated_at = NOW()
    `,
		s.ID.String(),
		string(s.Name),
		s.Description,
		s.Type,
		nullableString(parentID),
		maxSize,
		s.Disbanded,
	); err != nil {
		return translateTeamPgError(err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1`, s.ID.String()); err != nil {
		return translateTeamPgError(err)
	}
	for _, m := range s.Members {
		if _, err := exec.Exec(ctx, `
            INSERT INTO team_members (team_id, employee_id, role, allocation, assigned_at)
            VALUES ($1, $2, $3, $4, $5)
        `,
			s.ID.String(),
			m.EmployeeID().String(),
			string(m.Role()),
			m.Allocation(),
			m.AssignedAt().UTC(),
		); err != nil {
			return translateTeamPgError(err)
		}
	}
	return nil
}

func (r *TeamRepository) findMany(ctx context.Context, query string, args ...any) ([]*team.Team, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateTeamPgError(err)
	}
	defer rows.Close()

	var snapshots []team.Snapshot
	for rows.Next() {
		s, err := scanTeam(rows)
		if err != nil {
			return nil, translateTeamPgError(err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateTeamPgError(err)
	}
	rows.Close()

	if len(snapshots) == 0 {
		return nil, nil
	}

	ids := make([]string, len(snapshots))
	for i, s := range snapshots {
		ids[i] = s.ID.String()
	}
	members, err := r.loadMembers(ctx, exec, ids)
	if err != nil {
		return nil, err
	}

	teams := make([]*team.Team, 0, len(snapshots))
	for _, s := range snapshots {
		s.Members = members[s.ID]
		teams = append(teams, team.Reconstitute(s))
	}
	return teams, nil
}

func (r *TeamRepository) loadMembers(ctx context.Context, exec pgdb.Queryer, ids []string) (map[team.ID][]team.Member, error) {
	rows, err := exec.Query(ctx, `
        SELECT team_id, employee_id, role, allocation, assigned_at
          FROM team_members
         WHERE team_id = ANY($1)
         ORDER BY assigned_at, employee_id
    `, ids)
	if err != nil {
		return nil, translateTeamPgError(err)
	}
	defer rows.Close()

	out := make(map[team.ID][]team.Member, len(ids))
	for rows.Next() {
		var (
			teamID     string
			employeeID string
			role       string
			allocation int
			assignedAt time.Time
		)
		if err := rows.Scan(&teamID, &employeeID, &role, &allocation, &assignedAt); err != nil {
			return nil, translateTeamPgError(err)
		}
		key := team.ID(teamID)
		out[key] = append(out[key], team.RestoreMember(employee.ID(employeeID), team.MemberRole(role), allocation, assignedAt.UTC()))
	}
	if err := rows.Err(); err != nil {
		return nil, translateTeamPgError(err)
	}
	return out, nil
}

func scanTeam(row pgx.Row) (team.Snapshot, error) {
	var (
		id          string
		name        string
		description string
		teamType    string
		parentID    sql.NullString
		maxSize     sql.NullInt32
		disbanded   bool
	)
	if err := row.Scan(&id, &name, &description, &teamType, &parentID, &maxSize, &disbanded); err != nil {
		return team.Snapshot{}, err
	}

	s := team.Snapshot{
		ID:          team.ID(id),
		Name:        team.Name(name),
		Description: description,
		Type:        teamType,
		Disbanded:   disbanded,
	}
	if parentID.Valid {
		p := team.ID(parentID.String)
		s.ParentID = &p
	}
	if maxSize.Valid {
		n := int(maxSize.Int32)
		s.MaxSize = &n
	}
	return s, nil
}

func translateTeamPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return team.ErrTeamNotFound
	}

	code, constraint, ok := pgdb.PgErrorCode(err)
	if !ok {
		return err
	}
	switch code {
	case pgdb.UniqueViolationCode:
		switch constraint {
		case "teams_pkey", "team_members_pkey", "team_members_single_lead_key":
			return fmt.Errorf("%w: %w", shared.ErrConflict, err)
		}
	case pgdb.ForeignKeyViolationCode:
		switch constraint {
		case "teams_parent_team_id_fkey":
			return team.ErrTeamNotFound
		case "team_members_employee_id_fkey":
			return employee.ErrEmployeeNotFound
		}
	case pgdb.CheckViolationCode:
		switch constraint {
		case "teams_parent_check":
			return team.ErrSelfParent
		case "team_members_allocation_check":
			return team.ErrInvalidAllocation
		}
	}
	return pgdb.TranslateConflict(err)
}
