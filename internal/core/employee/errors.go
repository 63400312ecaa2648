package employee

import (
	"fmt"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

var (
	ErrInvalidID              = shared.NewInvariant("employee.id", "employee: invalid id")
	ErrInvalidFirstName       = shared.NewInvariant("employee.first_name", "employee: first name cannot be empty")
	ErrInvalidLastName        = shared.NewInvariant("employee.last_name", "employee: last name cannot be empty")
	ErrUnderage               = shared.NewInvariant("employee.minimum_age", "employee: must be at least 18 years old at hire")
	ErrInvalidPosition        = shared.NewInvariant("employee.position", "employee: invalid position")
	ErrInvalidLocation        = shared.NewInvariant("employee.location", "employee: invalid work location")
	ErrInvalidPayFrequency    = shared.NewInvariant("employee.pay_frequency", "employee: invalid pay frequency")
	ErrSalaryBelowMinimum     = shared.NewInvariant("employee.salary_floor", "employee: salary must be at least 30,000/year")
	ErrInvalidRemotePolicy    = shared.NewInvariant("employee.remote_policy", "employee: invalid remote work policy")
	ErrInvalidWeekday         = shared.NewInvariant("employee.remote_weekday", "employee: remote days must be Monday to Friday")
	ErrHybridRequiresDays     = shared.NewInvariant("employee.hybrid_days", "employee: hybrid policy requires at least one remote day")
	ErrInvalidStatus          = shared.NewInvariant("employee.status", "employee: invalid employment status")
	ErrInvalidTerminationType = shared.NewInvariant("employee.termination_type", "employee: termination type must be set")
	ErrInvalidPageSize        = shared.NewInvariant("employee.page_size", "employee: invalid page size")
	ErrInvalidPageToken       = shared.NewInvariant("employee.page_token", "employee: invalid page token")

	ErrHireDateInFuture        = shared.NewInvariant("employee.hire_date", "employee: hire date cannot be in the future")
	ErrEffectiveDateInPast     = shared.NewInvariant("employee.effective_date", "employee: position effective date cannot be in the past")
	ErrTerminationDateInPast   = shared.NewInvariant("employee.termination_date", "employee: termination date cannot be in the past")
	ErrLastWorkingDayAfterTerm = shared.NewInvariant("employee.last_working_day", "employee: last working day must be on or before termination date")
	ErrReinstatementDateInPast = shared.NewInvariant("employee.reinstatement_date", "employee: reinstatement date cannot be in the past")

	ErrTerminated         = shared.NewConflict("employee.terminated", "employee: cannot modify terminated employee")
	ErrNotTerminated      = shared.NewConflict("employee.not_terminated", "employee: only terminated employees can be reinstated")
	ErrSalaryDecrease     = shared.NewConflict("employee.salary_monotonic", "employee: salary decrease requires special approval process")
	ErrEmailAlreadyExists = shared.NewConflict("employee.email_unique", "employee: email already exists")

	ErrEmployeeNotFound = fmt.Errorf("employee: %w", shared.ErrNotFound)
)
