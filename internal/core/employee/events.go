package employee

import (
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// AggregateType はイベントに付与する集約種別です。
const AggregateType = "employee"

const (
	EventHired                = "employee.hired"
	EventPositionChanged      = "employee.position_changed"
	EventLocationChanged      = "employee.location_changed"
	EventRemoteWorkConfigured = "employee.remote_work_configured"
	EventTerminated           = "employee.terminated"
	EventReinstated           = "employee.reinstated"
)

// Hired は社員の入社を表します。
type Hired struct {
	shared.EventBase
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Position   string    `json:"position"`
	Department string    `json:"department"`
	Salary     string    `json:"salary"`
	Currency   string    `json:"currency"`
	Location   string    `json:"location"`
	HireDate   time.Time `json:"hire_date"`
}

// PositionChanged は昇格などの職位・給与変更を表します。
type PositionChanged struct {
	shared.EventBase
	EmployeeID       string    `json:"employee_id"`
	PreviousPosition string    `json:"previous_position"`
	NewPosition      string    `json:"new_position"`
	PreviousSalary   string    `json:"previous_salary"`
	NewSalary        string    `json:"new_salary"`
	Currency         string    `json:"currency"`
	EffectiveDate    time.Time `json:"effective_date"`
	Reason           string    `json:"reason"`
}

type LocationChanged struct {
	shared.EventBase
	EmployeeID       string    `json:"employee_id"`
	PreviousLocation string    `json:"previous_location"`
	NewLocation      string    `json:"new_location"`
	EffectiveDate    time.Time `json:"effective_date"`
	Reason           string    `json:"reason"`
}

// RemoteWorkConfigured の PolicyType はポリシー解除時に空文字です。
type RemoteWorkConfigured struct {
	shared.EventBase
	EmployeeID string   `json:"employee_id"`
	PolicyType string   `json:"policy_type"`
	RemoteDays []string `json:"remote_days"`
}

type Terminated struct {
	shared.EventBase
	EmployeeID      string    `json:"employee_id"`
	TerminationDate time.Time `json:"termination_date"`
	LastWorkingDay  time.Time `json:"last_working_day"`
	TerminationType string    `json:"termination_type"`
	Reason          string    `json:"reason"`
}

type Reinstated struct {
	shared.EventBase
	EmployeeID        string    `json:"employee_id"`
	ReinstatementDate time.Time `json:"reinstatement_date"`
	Reason            string    `json:"reason"`
}
