package listener

import (
	"context"
	"fmt"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/team"
	"go.uber.org/zap"
)

// TeamReader はチームを ID で取得します。
type TeamReader interface {
	GetTeam(ctx context.Context, id string) (*team.Team, error)
}

// TeamCapacity はメンバーの増減ごとにチームの人数と上限を記録します。
type TeamCapacity struct {
	teams  TeamReader
	logger *zap.Logger
}

func NewTeamCapacity(teams TeamReader, logger *zap.Logger) *TeamCapacity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamCapacity{teams: teams, logger: logger.Named("listener.team_capacity")}
}

func (c *TeamCapacity) Name() string { return "team_capacity" }

func (c *TeamCapacity) Handle(ctx context.Context, event shared.Event) error {
	var teamID string
	switch ev := event.(type) {
	case team.EmployeeAssigned:
		teamID = ev.TeamID
	case team.EmployeeRemoved:
		teamID = ev.TeamID
	default:
		return nil
	}

	t, err := c.teams.GetTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("team capacity: load %s: %w", teamID, err)
	}

	fields := []zap.Field{
		zap.String("team_id", teamID),
		zap.String("event_type", event.EventType()),
		zap.Int("member_count", t.MemberCount()),
		zap.Int("total_allocation", t.TotalAllocation()),
	}
	if maxSize := t.MaxSize(); maxSize != nil {
		fields = append(fields, zap.Int("max_size", *maxSize))
		if t.MemberCount() >= *maxSize {
			c.logger.Warn("team reached maximum size", fields...)
			return nil
		}
	}
	c.logger.Info("team capacity updated", fields...)
	return nil
}
