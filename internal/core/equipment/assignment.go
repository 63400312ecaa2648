package equipment

import (
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// Assignment は備品の貸出 1 件です。Equipment 集約のみが所有します。
type Assignment struct {
	id         string
	employeeID employee.ID
	assignedAt time.Time
	returnedAt *time.Time
	condition  string
}

func newAssignment(employeeID employee.ID, assignedAt time.Time) *Assignment {
	return &Assignment{
		id:         uuid.NewString(),
		employeeID: employeeID,
		assignedAt: assignedAt.UTC(),
	}
}

// RestoreAssignment は保存済みの貸出を復元します。
func RestoreAssignment(id string, employeeID employee.ID, assignedAt time.Time, returnedAt *time.Time, condition string) Assignment {
	var returned *time.Time
	if returnedAt != nil {
		r := returnedAt.UTC()
		returned = &r
	}
	return Assignment{id: id, employeeID: employeeID, assignedAt: assignedAt.UTC(), returnedAt: returned, condition: condition}
}

func (a *Assignment) complete(returnedAt time.Time, condition string) error {
	if a.returnedAt != nil {
		return ErrAssignmentAlreadyClosed
	}
	if returnedAt.Before(a.assignedAt) {
		return ErrReturnBeforeAssign
	}
	r := returnedAt.UTC()
	a.returnedAt = &r
	a.condition = condition
	return nil
}

func (a Assignment) ID() string              { return a.id }
func (a Assignment) EmployeeID() employee.ID { return a.employeeID }
func (a Assignment) AssignedAt() time.Time   { return a.assignedAt }
func (a Assignment) Condition() string       { return a.condition }
func (a Assignment) IsActive() bool          { return a.returnedAt == nil }

func (a Assignment) ReturnedAt() *time.Time {
	if a.returnedAt == nil {
		return nil
	}
	r := *a.returnedAt
	return &r
}

// DurationInDays は貸出日から返却日 (未返却なら now) までの日数です。
func (a Assignment) DurationInDays(now time.Time) int {
	end := now
	if a.returnedAt != nil {
		end = *a.returnedAt
	}
	return shared.DaysBetween(a.assignedAt, end)
}
