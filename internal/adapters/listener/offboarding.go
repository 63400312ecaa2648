package listener

import (
	"context"
	"fmt"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/equipment"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/team"
	"go.uber.org/zap"
)

// TeamRemover は社員を全所属チームから外します。
type TeamRemover interface {
	RemoveFromAllTeams(ctx context.Context, employeeID string) ([]team.ID, error)
}

// AssignmentFinder は社員に貸出中の備品を返します。
type AssignmentFinder interface {
	ListAssignedTo(ctx context.Context, employeeID string) ([]*equipment.Equipment, error)
}

// Offboarding は employee.terminated を受けて退職処理を行います。
// チームからの除外は再実行しても結果が変わらず、貸出中の備品は返却待ちとして記録します。
type Offboarding struct {
	teams     TeamRemover
	equipment AssignmentFinder
	logger    *zap.Logger
}

func NewOffboarding(teams TeamRemover, equipment AssignmentFinder, logger *zap.Logger) *Offboarding {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Offboarding{teams: teams, equipment: equipment, logger: logger.Named("listener.offboarding")}
}

func (o *Offboarding) Name() string { return "offboarding" }

// Handle は退職した社員をチームから外し、未返却の備品を警告ログに残します。
func (o *Offboarding) Handle(ctx context.Context, event shared.Event) error {
	terminated, ok := event.(employee.Terminated)
	if !ok {
		return nil
	}

	removed, err := o.teams.RemoveFromAllTeams(ctx, terminated.EmployeeID)
	if err != nil {
		return fmt.Errorf("offboarding: remove %s from teams: %w", terminated.EmployeeID, err)
	}

	assigned, err := o.equipment.ListAssignedTo(ctx, terminated.EmployeeID)
	if err != nil {
		return fmt.Errorf("offboarding: list equipment of %s: %w", terminated.EmployeeID, err)
	}
	for _, item := range assigned {
		o.logger.Warn("equipment must be returned",
			zap.String("employee_id", terminated.EmployeeID),
			zap.String("equipment_id", item.ID()),
			zap.String("asset_tag", item.AssetTag().String()),
			zap.String("last_working_day", terminated.LastWorkingDay.Format(time.DateOnly)),
		)
	}

	teamIDs := make([]string, len(removed))
	for i, id := range removed {
		teamIDs[i] = id.String()
	}
	o.logger.Info("offboarding processed",
		zap.String("employee_id", terminated.EmployeeID),
		zap.String("termination_type", terminated.TerminationType),
		zap.String("termination_date", terminated.TerminationDate.Format(time.DateOnly)),
		zap.Strings("removed_from_teams", teamIDs),
		zap.Int("equipment_outstanding", len(assigned)),
	)
	return nil
}
