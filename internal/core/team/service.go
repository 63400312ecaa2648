package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

const defaultListLimit = 100

// Service はチームに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock shared.Clock
	uow   *shared.UnitOfWork
}

// NewService は Service を生成します。
func NewService(repo Repository, clock shared.Clock, uow *shared.UnitOfWork) *Service {
	if clock == nil {
		clock = shared.RealClock{}
	}
	if uow == nil {
		uow = shared.NewUnitOfWork(nil)
	}
	return &Service{repo: repo, clock: clock, uow: uow}
}

// CreateTeamInput はチーム作成時の入力です。
type CreateTeamInput struct {
	Name         string
	Description  string
	Type         string
	ParentTeamID *string
	MaxSize      *int
}

type UpdateTeamInput struct {
	ID          string
	Name        string
	Description string
	MaxSize     *int
}

type AssignMemberInput struct {
	TeamID     string
	EmployeeID string
	Role       string
	Allocation int
}

type TransferMemberInput struct {
	EmployeeID   string
	SourceTeamID string
	TargetTeamID string
	Role         string
	Allocation   int
}

type ListTeamsInput struct {
	IncludeDisbanded bool
	ParentTeamID     *string
	Limit            int
	Offset           int
}

// CreateTeam は TEAM-NNNN を採番してチームを作成します。親チームは存在している必要があります。
func (s *Service) CreateTeam(ctx context.Context, in CreateTeamInput) (*Team, error) {
	name, err := ParseName(in.Name)
	if err != nil {
		return nil, err
	}
	var parentID *ID
	if in.ParentTeamID != nil && strings.TrimSpace(*in.ParentTeamID) != "" {
		pid, err := ParseID(*in.ParentTeamID)
		if err != nil {
			return nil, err
		}
		parentID = &pid
	}

	var created *Team
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		if parentID != nil {
			if _, err := s.repo.FindByID(txCtx, *parentID); err != nil {
				return nil, err
			}
		}
		id, err := s.repo.NextIdentity(txCtx)
		if err != nil {
			return nil, err
		}
		t, err := Create(id, name, in.Description, in.Type, parentID, in.MaxSize, s.clock.Now())
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, t); err != nil {
			return nil, err
		}
		created = t
		return t.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTeam は名称・説明・上限人数を更新します。
func (s *Service) UpdateTeam(ctx context.Context, in UpdateTeamInput) (*Team, error) {
	name, err := ParseName(in.Name)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, in.ID, func(t *Team, _ time.Time) error {
		return t.UpdateDetails(name, in.Description, in.MaxSize)
	})
}

// AssignMember は社員をチームに追加します。Allocation が 0 の場合は 100 とみなします。
func (s *Service) AssignMember(ctx context.Context, in AssignMemberInput) (*Team, error) {
	employeeID, role, allocation, err := parseMembership(in.EmployeeID, in.Role, in.Allocation)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, in.TeamID, func(t *Team, now time.Time) error {
		return t.AssignMember(employeeID, role, allocation, now)
	})
}

func (s *Service) RemoveMember(ctx context.Context, teamID, employeeID string) (*Team, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, teamID, func(t *Team, now time.Time) error {
		return t.RemoveMember(id, now)
	})
}

func (s *Service) ChangeTeamLead(ctx context.Context, teamID, employeeID string) (*Team, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, teamID, func(t *Team, now time.Time) error {
		return t.ChangeTeamLead(id, now)
	})
}

func (s *Service) ChangeMemberAllocation(ctx context.Context, teamID, employeeID string, percentage int) (*Team, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, teamID, func(t *Team, now time.Time) error {
		return t.ChangeMemberAllocation(id, percentage, now)
	})
}

func (s *Service) DisbandTeam(ctx context.Context, teamID string) (*Team, error) {
	return s.mutate(ctx, teamID, func(t *Team, now time.Time) error {
		return t.Disband(now)
	})
}

// TransferMember は 1 トランザクションで移籍元から外し移籍先へ追加します。
func (s *Service) TransferMember(ctx context.Context, in TransferMemberInput) error {
	employeeID, role, allocation, err := parseMembership(in.EmployeeID, in.Role, in.Allocation)
	if err != nil {
		return err
	}
	sourceID, err := ParseID(in.SourceTeamID)
	if err != nil {
		return err
	}
	targetID, err := ParseID(in.TargetTeamID)
	if err != nil {
		return err
	}

	return s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		now := s.clock.Now()
		source, err := s.repo.FindByID(txCtx, sourceID)
		if err != nil {
			return nil, err
		}
		target, err := s.repo.FindByID(txCtx, targetID)
		if err != nil {
			return nil, err
		}
		if err := source.RemoveMember(employeeID, now); err != nil {
			return nil, err
		}
		if err := target.AssignMember(employeeID, role, allocation, now); err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, source); err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, target); err != nil {
			return nil, err
		}
		return append(source.ReleaseEvents(), target.ReleaseEvents()...), nil
	})
}

// RemoveFromAllTeams は退職処理用に社員を全所属チームから外し、外したチーム ID を返します。
func (s *Service) RemoveFromAllTeams(ctx context.Context, employeeID string) ([]ID, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}

	var removed []ID
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		removed = removed[:0]
		teams, err := s.repo.FindByMember(txCtx, id)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now()
		var events []shared.Event
		for _, t := range teams {
			if err := t.RemoveMember(id, now); err != nil {
				if errors.Is(err, ErrNotMember) || errors.Is(err, ErrDisbanded) {
					continue
				}
				return nil, err
			}
			if err := s.repo.Save(txCtx, t); err != nil {
				return nil, err
			}
			removed = append(removed, t.TeamID())
			events = append(events, t.ReleaseEvents()...)
		}
		return events, nil
	}); err != nil {
		return nil, err
	}

	return removed, nil
}

func (s *Service) GetTeam(ctx context.Context, id string) (*Team, error) {
	teamID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var found *Team
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		found, err = s.repo.FindByID(txCtx, teamID)
		return err
	})
	return found, err
}

func (s *Service) ListTeams(ctx context.Context, in ListTeamsInput) ([]*Team, error) {
	filter := ListFilter{IncludeDisbanded: in.IncludeDisbanded, Limit: in.Limit, Offset: in.Offset}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if in.ParentTeamID != nil {
		pid, err := ParseID(*in.ParentTeamID)
		if err != nil {
			return nil, err
		}
		filter.ParentID = &pid
	}

	var teams []*Team
	err := s.uow.Read(ctx, func(txCtx context.Context) error {
		var err error
		teams, err = s.repo.List(txCtx, filter)
		return err
	})
	return teams, err
}

// ListTeamsOf は社員が所属するチームを返します。
func (s *Service) ListTeamsOf(ctx context.Context, employeeID string) ([]*Team, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	var teams []*Team
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		teams, err = s.repo.FindByMember(txCtx, id)
		return err
	})
	return teams, err
}

func (s *Service) mutate(ctx context.Context, rawID string, fn func(*Team, time.Time) error) (*Team, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	var updated *Team
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		t, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(t, s.clock.Now()); err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, t); err != nil {
			return nil, err
		}
		updated = t
		return t.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

func parseMembership(rawEmployeeID, rawRole string, allocation int) (employee.ID, MemberRole, int, error) {
	employeeID, err := employee.ParseID(rawEmployeeID)
	if err != nil {
		return "", "", 0, err
	}
	role, err := ParseMemberRole(rawRole)
	if err != nil {
		return "", "", 0, err
	}
	if allocation == 0 {
		allocation = MaxAllocation
	}
	return employeeID, role, allocation, nil
}
