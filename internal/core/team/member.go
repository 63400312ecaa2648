package team

import (
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
)

// Member はチームへの所属 1 件です。Team 集約のみが所有します。
type Member struct {
	employeeID employee.ID
	role       MemberRole
	allocation int
	assignedAt time.Time
}

func newMember(employeeID employee.ID, role MemberRole, allocation int, assignedAt time.Time) (*Member, error) {
	if err := validateAllocation(allocation); err != nil {
		return nil, err
	}
	return &Member{employeeID: employeeID, role: role, allocation: allocation, assignedAt: assignedAt.UTC()}, nil
}

// RestoreMember は保存済みの所属を復元します。
func RestoreMember(employeeID employee.ID, role MemberRole, allocation int, assignedAt time.Time) Member {
	return Member{employeeID: employeeID, role: role, allocation: allocation, assignedAt: assignedAt.UTC()}
}

func (m *Member) changeRole(role MemberRole) {
	m.role = role
}

func (m *Member) changeAllocation(percentage int) error {
	if err := validateAllocation(percentage); err != nil {
		return err
	}
	m.allocation = percentage
	return nil
}

func (m Member) EmployeeID() employee.ID { return m.employeeID }
func (m Member) Role() MemberRole        { return m.role }
func (m Member) Allocation() int         { return m.allocation }
func (m Member) AssignedAt() time.Time   { return m.assignedAt }
