package team

import "github.com/ogurasousui/workforce-lifecycle/internal/core/shared"

const AggregateType = "team"

const (
	EventCreated           = "team.created"
	EventEmployeeAssigned  = "team.employee_assigned"
	EventEmployeeRemoved   = "team.employee_removed"
	EventLeadChanged       = "team.lead_changed"
	EventAllocationChanged = "team.member_allocation_changed"
	EventDisbanded         = "team.disbanded"
)

type Created struct {
	shared.EventBase
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ParentTeamID string `json:"parent_team_id,omitempty"`
}

type EmployeeAssigned struct {
	shared.EventBase
	TeamID      string `json:"team_id"`
	EmployeeID  string `json:"employee_id"`
	Role        string `json:"role"`
	Allocation  int    `json:"allocation"`
	MemberCount int    `json:"member_count"`
}

type EmployeeRemoved struct {
	shared.EventBase
	TeamID      string `json:"team_id"`
	EmployeeID  string `json:"employee_id"`
	MemberCount int    `json:"member_count"`
}

type LeadChanged struct {
	shared.EventBase
	TeamID         string `json:"team_id"`
	NewLeadID      string `json:"new_lead_id"`
	PreviousLeadID string `json:"previous_lead_id,omitempty"`
}

type AllocationChanged struct {
	shared.EventBase
	TeamID     string `json:"team_id"`
	EmployeeID string `json:"employee_id"`
	Previous   int    `json:"previous"`
	Allocation int    `json:"allocation"`
}

type Disbanded struct {
	shared.EventBase
	TeamID string `json:"team_id"`
}
