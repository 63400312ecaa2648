package team

import (
	"fmt"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

var (
	ErrInvalidID         = shared.NewInvariant("team.id", "team: invalid id")
	ErrInvalidName       = shared.NewInvariant("team.name", "team: name must be 1 to 100 characters")
	ErrInvalidRole       = shared.NewInvariant("team.member_role", "team: invalid member role")
	ErrInvalidAllocation = shared.NewInvariant("team.allocation", "team: allocation percentage must be between 1 and 100")
	ErrInvalidMaxSize    = shared.NewInvariant("team.max_size", "team: max size must be positive")
	ErrInvalidEmployeeID = shared.NewInvariant("team.employee_id", "team: invalid employee id")
	ErrSelfParent        = shared.NewInvariant("team.parent", "team: team cannot be its own parent")

	ErrDisbanded        = shared.NewConflict("team.disbanded", "team: team has been disbanded")
	ErrSizeLimitReached = shared.NewConflict("team.size_limit", "team: maximum team size reached")
	ErrAlreadyMember    = shared.NewConflict("team.duplicate_member", "team: employee is already a team member")
	ErrNotMember        = shared.NewConflict("team.not_member", "team: employee is not a team member")
	ErrLeadExists       = shared.NewConflict("team.single_lead", "team: team already has a team lead")
	ErrHasMembers       = shared.NewConflict("team.disband_with_members", "team: cannot disband team with members")
	ErrMaxSizeBelowSize = shared.NewConflict("team.max_size_below_members", "team: max size is below current member count")

	ErrTeamNotFound = fmt.Errorf("team: %w", shared.ErrNotFound)
)
