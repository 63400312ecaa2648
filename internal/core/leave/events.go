package leave

import (
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

const AggregateType = "leave"

const (
	EventRequested = "leave.requested"
	EventApproved  = "leave.approved"
	EventRejected  = "leave.rejected"
	EventCancelled = "leave.cancelled"
	EventCompleted = "leave.completed"
)

type Requested struct {
	shared.EventBase
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	Type       string    `json:"type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       int       `json:"days"`
	Reason     string    `json:"reason,omitempty"`
}

type Approved struct {
	shared.EventBase
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	ApprovedBy string    `json:"approved_by"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       int       `json:"days"`
}

type Rejected struct {
	shared.EventBase
	LeaveID    string `json:"leave_id"`
	EmployeeID string `json:"employee_id"`
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
}

type Cancelled struct {
	shared.EventBase
	LeaveID        string    `json:"leave_id"`
	EmployeeID     string    `json:"employee_id"`
	PreviousStatus string    `json:"previous_status"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Days           int       `json:"days"`
}

type Completed struct {
	shared.EventBase
	LeaveID    string `json:"leave_id"`
	EmployeeID string `json:"employee_id"`
	Days       int    `json:"days"`
}
