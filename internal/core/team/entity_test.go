package team

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTeam(t *testing.T, maxSize *int) *Team {
	t.Helper()
	team, err := Create("TEAM-0001", "Platform", "core platform", "engineering", nil, maxSize, testNow)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	team.ReleaseEvents()
	return team
}

func empID(n int) employee.ID {
	return employee.ID(fmt.Sprintf("EMP-2025-%04d", n))
}

func TestCreate(t *testing.T) {
	t.Parallel()

	parent := ID("TEAM-0001")
	team, err := Create("TEAM-0002", "Payments", "", "squad", &parent, nil, testNow)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	events := team.ReleaseEvents()
	ev, ok := events[0].(Created)
	if len(events) != 1 || !ok || ev.ParentTeamID != "TEAM-0001" || ev.Name != "Payments" {
		t.Fatalf("unexpected events %+v", events)
	}

	self := ID("TEAM-0003")
	if _, err := Create("TEAM-0003", "Loop", "", "", &self, nil, testNow); !errors.Is(err, ErrSelfParent) {
		t.Fatalf("expected ErrSelfParent, got %v", err)
	}
	if _, err := ParseName("   "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := ParseName(string(long)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for 101 chars, got %v", err)
	}
	if _, err := ParseID("TEAM-12"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestAssignMember_SizeCap(t *testing.T) {
	t.Parallel()

	for _, maxSize := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("max=%d", maxSize), func(t *testing.T) {
			t.Parallel()

			size := maxSize
			team := newTeam(t, &size)
			for i := 1; i <= maxSize; i++ {
				if err := team.AssignMember(empID(i), RoleMember, 100, testNow); err != nil {
					t.Fatalf("AssignMember #%d returned error: %v", i, err)
				}
			}
			err := team.AssignMember(empID(maxSize+1), RoleMember, 100, testNow)
			if !errors.Is(err, ErrSizeLimitReached) {
				t.Fatalf("expected ErrSizeLimitReached on call %d, got %v", maxSize+1, err)
			}
			if team.MemberCount() != maxSize {
				t.Fatalf("expected %d members, got %d", maxSize, team.MemberCount())
			}
		})
	}
}

func TestAssignMember_Rules(t *testing.T) {
	t.Parallel()

	team := newTeam(t, nil)
	if err := team.AssignMember(empID(1), RoleTeamLead, 100, testNow); err != nil {
		t.Fatalf("AssignMember returned error: %v", err)
	}

	cases := []struct {
		name       string
		employee   employee.ID
		role       MemberRole
		allocation int
		want       error
	}{
		{name: "duplicate", employee: empID(1), role: RoleMember, allocation: 50, want: ErrAlreadyMember},
		{name: "second lead", employee: empID(2), role: RoleTeamLead, allocation: 50, want: ErrLeadExists},
		{name: "allocation zero", employee: empID(3), role: RoleMember, allocation: 0, want: ErrInvalidAllocation},
		{name: "allocation over", employee: empID(3), role: RoleMember, allocation: 101, want: ErrInvalidAllocation},
		{name: "bad employee", employee: "E-1", role: RoleMember, allocation: 10, want: ErrInvalidEmployeeID},
		{name: "unknown role", employee: empID(3), role: MemberRole("Boss"), allocation: 10, want: ErrInvalidRole},
		{name: "empty role", employee: empID(3), role: "", allocation: 10, want: ErrInvalidRole},
	}
	for _, tc := range cases {
		err := team.AssignMember(tc.employee, tc.role, tc.allocation, testNow)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if team.MemberCount() != 1 {
		t.Fatalf("failed assignments must not add members, got %d", team.MemberCount())
	}
	if len(team.PendingEvents()) != 1 {
		t.Fatalf("expected only the first assignment event, got %d", len(team.PendingEvents()))
	}
	if err := team.AssignMember(empID(2), RoleTechLead, 50, testNow); err != nil {
		t.Fatalf("TechLead alongside TeamLead must be allowed: %v", err)
	}
	if team.TotalAllocation() != 150 {
		t.Fatalf("expected total allocation 150, got %d", team.TotalAllocation())
	}
}

func TestChangeTeamLead(t *testing.T) {
	t.Parallel()

	team := newTeam(t, nil)
	for i, role := range []MemberRole{RoleTeamLead, RoleMember, RoleTechLead} {
		if err := team.AssignMember(empID(i+1), role, 100, testNow); err != nil {
			t.Fatalf("AssignMember returned error: %v", err)
		}
	}
	team.ReleaseEvents()

	if err := team.ChangeTeamLead(empID(9), testNow); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	if err := team.ChangeTeamLead(empID(2), testNow); err != nil {
		t.Fatalf("ChangeTeamLead returned error: %v", err)
	}

	leads := 0
	for _, m := range team.Members() {
		if m.Role().IsTeamLead() {
			leads++
		}
	}
	if leads != 1 {
		t.Fatalf("expected exactly one lead, got %d", leads)
	}
	lead, ok := team.TeamLead()
	if !ok || lead.EmployeeID() != empID(2) {
		t.Fatalf("expected %s as lead, got %+v", empID(2), lead)
	}
	if m := team.Members()[0]; m.Role() != RoleMember {
		t.Fatalf("previous lead must be demoted, got %s", m.Role())
	}

	events := team.ReleaseEvents()
	ev, ok := events[0].(LeadChanged)
	if !ok || ev.PreviousLeadID != empID(1).String() || ev.NewLeadID != empID(2).String() {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestRemoveMemberAndDisband(t *testing.T) {
	t.Parallel()

	team := newTeam(t, nil)
	if err := team.AssignMember(empID(1), RoleMember, 100, testNow); err != nil {
		t.Fatalf("AssignMember returned error: %v", err)
	}
	if err := team.Disband(testNow); !errors.Is(err, ErrHasMembers) {
		t.Fatalf("expected ErrHasMembers, got %v", err)
	}
	if err := team.RemoveMember(empID(2), testNow); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	if err := team.RemoveMember(empID(1), testNow); err != nil {
		t.Fatalf("RemoveMember returned error: %v", err)
	}
	if err := team.Disband(testNow); err != nil {
		t.Fatalf("Disband returned error: %v", err)
	}
	if !team.IsDisbanded() {
		t.Fatalf("expected disbanded")
	}

	for name, err := range map[string]error{
		"assign":  team.AssignMember(empID(3), RoleMember, 100, testNow),
		"remove":  team.RemoveMember(empID(1), testNow),
		"disband": team.Disband(testNow),
	} {
		if !errors.Is(err, ErrDisbanded) {
			t.Fatalf("%s: expected ErrDisbanded, got %v", name, err)
		}
		if !shared.IsRuleConflict(err) {
			t.Fatalf("%s: expected rule conflict kind", name)
		}
	}
}

func TestChangeMemberAllocation(t *testing.T) {
	t.Parallel()

	team := newTeam(t, nil)
	if err := team.AssignMember(empID(1), RoleMember, 100, testNow); err != nil {
		t.Fatalf("AssignMember returned error: %v", err)
	}
	team.ReleaseEvents()

	if err := team.ChangeMemberAllocation(empID(1), 0, testNow); !errors.Is(err, ErrInvalidAllocation) {
		t.Fatalf("expected ErrInvalidAllocation, got %v", err)
	}
	if err := team.ChangeMemberAllocation(empID(1), 40, testNow); err != nil {
		t.Fatalf("ChangeMemberAllocation returned error: %v", err)
	}
	if team.TotalAllocation() != 40 {
		t.Fatalf("expected 40, got %d", team.TotalAllocation())
	}
	events := team.ReleaseEvents()
	ev, ok := events[0].(AllocationChanged)
	if len(events) != 1 || !ok || ev.Previous != 100 || ev.Allocation != 40 {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestUpdateDetails_MaxSizeBelowMembers(t *testing.T) {
	t.Parallel()

	team := newTeam(t, nil)
	for i := 1; i <= 3; i++ {
		if err := team.AssignMember(empID(i), RoleMember, 100, testNow); err != nil {
			t.Fatalf("AssignMember returned error: %v", err)
		}
	}
	two := 2
	if err := team.UpdateDetails("Platform", "", &two); !errors.Is(err, ErrMaxSizeBelowSize) {
		t.Fatalf("expected ErrMaxSizeBelowSize, got %v", err)
	}
	three := 3
	if err := team.UpdateDetails("Platform Core", "renamed", &three); err != nil {
		t.Fatalf("UpdateDetails returned error: %v", err)
	}
	if team.Name() != "Platform Core" || *team.MaxSize() != 3 {
		t.Fatalf("unexpected details %s %v", team.Name(), team.MaxSize())
	}
}
