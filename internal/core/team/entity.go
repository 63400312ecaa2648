package team

import (
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// Team はチーム集約です。同一社員の重複所属と TeamLead の複数化を許しません。
type Team struct {
	shared.AggregateRoot

	id          ID
	name        Name
	description string
	teamType    string
	parentID    *ID
	maxSize     *int
	disbanded   bool
	members     []*Member
}

// Create はチームを作成し team.created を記録します。
func Create(id ID, name Name, description, teamType string, parentID *ID, maxSize *int, now time.Time) (*Team, error) {
	if _, err := ParseID(string(id)); err != nil {
		return nil, err
	}
	if _, err := ParseName(string(name)); err != nil {
		return nil, err
	}
	if parentID != nil && *parentID == id {
		return nil, ErrSelfParent
	}
	if maxSize != nil && *maxSize < 1 {
		return nil, ErrInvalidMaxSize
	}

	t := &Team{
		id:          id,
		name:        name,
		description: strings.TrimSpace(description),
		teamType:    strings.TrimSpace(teamType),
		parentID:    copyID(parentID),
		maxSize:     copyInt(maxSize),
	}

	ev := Created{
		EventBase: shared.NewEventBase(EventCreated, AggregateType, id.String(), now),
		TeamID:    id.String(),
		Name:      name.String(),
		Type:      t.teamType,
	}
	if parentID != nil {
		ev.ParentTeamID = parentID.String()
	}
	t.Record(ev)
	return t, nil
}

// UpdateDetails は名称・説明・上限人数を変更します。上限は現在の人数を下回れません。
func (t *Team) UpdateDetails(name Name, description string, maxSize *int) error {
	if t.disbanded {
		return ErrDisbanded
	}
	if _, err := ParseName(string(name)); err != nil {
		return err
	}
	if maxSize != nil {
		if *maxSize < 1 {
			return ErrInvalidMaxSize
		}
		if *maxSize < len(t.members) {
			return ErrMaxSizeBelowSize
		}
	}
	t.name = name
	t.description = strings.TrimSpace(description)
	t.maxSize = copyInt(maxSize)
	return nil
}

// AssignMember は社員をチームに追加します。
func (t *Team) AssignMember(employeeID employee.ID, role MemberRole, allocation int, now time.Time) error {
	if t.disbanded {
		return ErrDisbanded
	}
	if _, err := employee.ParseID(string(employeeID)); err != nil {
		return ErrInvalidEmployeeID
	}
	if err := role.Validate(); err != nil {
		return err
	}
	if t.maxSize != nil && len(t.members) >= *t.maxSize {
		return ErrSizeLimitReached
	}
	if t.HasMember(employeeID) {
		return ErrAlreadyMember
	}
	if role.IsTeamLead() && t.hasTeamLead() {
		return ErrLeadExists
	}

	member, err := newMember(employeeID, role, allocation, now)
	if err != nil {
		return err
	}
	t.members = append(t.members, member)

	t.Record(EmployeeAssigned{
		EventBase:   shared.NewEventBase(EventEmployeeAssigned, AggregateType, t.id.String(), now),
		TeamID:      t.id.String(),
		EmployeeID:  employeeID.String(),
		Role:        string(role),
		Allocation:  allocation,
		MemberCount: len(t.members),
	})
	return nil
}

// RemoveMember は社員をチームから外します。
func (t *Team) RemoveMember(employeeID employee.ID, now time.Time) error {
	if t.disbanded {
		return ErrDisbanded
	}
	idx := t.indexOf(employeeID)
	if idx < 0 {
		return ErrNotMember
	}

	t.members = append(t.members[:idx:idx], t.members[idx+1:]...)

	t.Record(EmployeeRemoved{
		EventBase:   shared.NewEventBase(EventEmployeeRemoved, AggregateType, t.id.String(), now),
		TeamID:      t.id.String(),
		EmployeeID:  employeeID.String(),
		MemberCount: len(t.members),
	})
	return nil
}

// ChangeTeamLead は既存の TeamLead を Member に降格してから対象を昇格させます。
func (t *Team) ChangeTeamLead(newLeadID employee.ID, now time.Time) error {
	if t.disbanded {
		return ErrDisbanded
	}
	if !t.HasMember(newLeadID) {
		return ErrNotMember
	}

	var previous employee.ID
	for _, m := range t.members {
		if m.role.IsTeamLead() {
			previous = m.employeeID
			m.changeRole(RoleMember)
		}
	}
	for _, m := range t.members {
		if m.employeeID == newLeadID {
			m.changeRole(RoleTeamLead)
		}
	}

	ev := LeadChanged{
		EventBase: shared.NewEventBase(EventLeadChanged, AggregateType, t.id.String(), now),
		TeamID:    t.id.String(),
		NewLeadID: newLeadID.String(),
	}
	if previous != "" && previous != newLeadID {
		ev.PreviousLeadID = previous.String()
	}
	t.Record(ev)
	return nil
}

// ChangeMemberAllocation は所属メンバーの稼働割合を変更します。
func (t *Team) ChangeMemberAllocation(employeeID employee.ID, percentage int, now time.Time) error {
	if t.disbanded {
		return ErrDisbanded
	}
	idx := t.indexOf(employeeID)
	if idx < 0 {
		return ErrNotMember
	}

	member := t.members[idx]
	previous := member.allocation
	if err := member.changeAllocation(percentage); err != nil {
		return err
	}

	t.Record(AllocationChanged{
		EventBase:  shared.NewEventBase(EventAllocationChanged, AggregateType, t.id.String(), now),
		TeamID:     t.id.String(),
		EmployeeID: employeeID.String(),
		Previous:   previous,
		Allocation: percentage,
	})
	return nil
}

// Disband はメンバーがいない場合のみチームを解散します。
func (t *Team) Disband(now time.Time) error {
	if t.disbanded {
		return ErrDisbanded
	}
	if len(t.members) > 0 {
		return ErrHasMembers
	}

	t.disbanded = true

	t.Record(Disbanded{
		EventBase: shared.NewEventBase(EventDisbanded, AggregateType, t.id.String(), now),
		TeamID:    t.id.String(),
	})
	return nil
}

func (t *Team) ID() string          { return t.id.String() }
func (t *Team) TeamID() ID          { return t.id }
func (t *Team) Name() Name          { return t.name }
func (t *Team) Description() string { return t.description }
func (t *Team) Type() string        { return t.teamType }
func (t *Team) ParentID() *ID       { return copyID(t.parentID) }
func (t *Team) MaxSize() *int       { return copyInt(t.maxSize) }
func (t *Team) IsDisbanded() bool   { return t.disbanded }
func (t *Team) MemberCount() int    { return len(t.members) }

// Members は所属メンバーを追加順に返します。
func (t *Team) Members() []Member {
	out := make([]Member, 0, len(t.members))
	for _, m := range t.members {
		out = append(out, *m)
	}
	return out
}

// TeamLead は現在の TeamLead を返します。不在なら false です。
func (t *Team) TeamLead() (Member, bool) {
	for _, m := range t.members {
		if m.role.IsTeamLead() {
			return *m, true
		}
	}
	return Member{}, false
}

// TotalAllocation はメンバーの稼働割合の合計です。
func (t *Team) TotalAllocation() int {
	total := 0
	for _, m := range t.members {
		total += m.allocation
	}
	return total
}

func (t *Team) HasMember(employeeID employee.ID) bool {
	return t.indexOf(employeeID) >= 0
}

func (t *Team) indexOf(employeeID employee.ID) int {
	for i, m := range t.members {
		if m.employeeID == employeeID {
			return i
		}
	}
	return -1
}

func (t *Team) hasTeamLead() bool {
	_, ok := t.TeamLead()
	return ok
}

// Snapshot は永続化層との受け渡しに使うチームの状態です。
type Snapshot struct {
	ID          ID
	Name        Name
	Description string
	Type        string
	ParentID    *ID
	MaxSize     *int
	Disbanded   bool
	Members     []Member
}

func (t *Team) Snapshot() Snapshot {
	return Snapshot{
		ID:          t.id,
		Name:        t.name,
		Description: t.description,
		Type:        t.teamType,
		ParentID:    copyID(t.parentID),
		MaxSize:     copyInt(t.maxSize),
		Disbanded:   t.disbanded,
		Members:     t.Members(),
	}
}

// Reconstitute は保存済みの状態から集約を復元します。
func Reconstitute(s Snapshot) *Team {
	members := make([]*Member, 0, len(s.Members))
	for _, m := range s.Members {
		members = append(members, &m)
	}
	return &Team{
		id:          s.ID,
		name:        s.Name,
		description: s.Description,
		teamType:    s.Type,
		parentID:    copyID(s.ParentID),
		maxSize:     copyInt(s.MaxSize),
		disbanded:   s.Disbanded,
		members:     members,
	}
}

func copyID(id *ID) *ID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
