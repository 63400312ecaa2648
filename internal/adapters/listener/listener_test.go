package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/equipment"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/team"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)

type fakeTeamRemover struct {
	removed []team.ID
	err     error
	calls   []string
}

func (f *fakeTeamRemover) RemoveFromAllTeams(_ context.Context, employeeID string) ([]team.ID, error) {
	f.calls = append(f.calls, employeeID)
	return f.removed, f.err
}

type fakeAssignmentFinder struct {
	items []*equipment.Equipment
}

func (f *fakeAssignmentFinder) ListAssignedTo(context.Context, string) ([]*equipment.Equipment, error) {
	return f.items, nil
}

type fakeTeamReader struct {
	teams map[string]*team.Team
}

func (f *fakeTeamReader) GetTeam(_ context.Context, id string) (*team.Team, error) {
	if t, ok := f.teams[id]; ok {
		return t, nil
	}
	return nil, team.ErrTeamNotFound
}

type recordingSubscriber struct {
	subscriptions map[string][]string
}

func (r *recordingSubscriber) Subscribe(listener, eventType string, _ func(context.Context, shared.Event) error) {
	if r.subscriptions == nil {
		r.subscriptions = make(map[string][]string)
	}
	r.subscriptions[eventType] = append(r.subscriptions[eventType], listener)
}

func terminatedEvent() employee.Terminated {
	return employee.Terminated{
		EventBase:       shared.NewEventBase(employee.EventTerminated, employee.AggregateType, "EMP-2025-0001", testNow),
		EmployeeID:      "EMP-2025-0001",
		TerminationDate: time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		LastWorkingDay:  time.Date(2025, 9, 26, 0, 0, 0, 0, time.UTC),
		TerminationType: "Voluntary",
		Reason:          "relocation",
	}
}

func issuedLaptop(t *testing.T) *equipment.Equipment {
	t.Helper()
	price, err := shared.NewMoney(decimal.NewFromInt(1800), "USD")
	require.NoError(t, err)
	item, err := equipment.Add(equipment.NewID(), "ASSET-2025-0004", "SN-LAPTOP-4", equipment.TypeLaptop, "Lenovo", "X1 Carbon", testNow.AddDate(0, -2, 0), price, testNow)
	require.NoError(t, err)
	require.NoError(t, item.Issue("EMP-2025-0001", testNow, testNow))
	return item
}

func TestOffboarding_RemovesFromTeamsAndReportsEquipment(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	teams := &fakeTeamRemover{removed: []team.ID{"TEAM-0001", "TEAM-0004"}}
	laptop := issuedLaptop(t)
	listener := NewOffboarding(teams, &fakeAssignmentFinder{items: []*equipment.Equipment{laptop}}, zap.New(core))

	require.NoError(t, listener.Handle(context.Background(), terminatedEvent()))
	require.Equal(t, []string{"EMP-2025-0001"}, teams.calls)

	warnings := logs.FilterMessage("equipment must be returned").All()
	require.Len(t, warnings, 1)
	require.Equal(t, "ASSET-2025-0004", warnings[0].ContextMap()["asset_tag"])
	require.Equal(t, "2025-09-26", warnings[0].ContextMap()["last_working_day"])

	done := logs.FilterMessage("offboarding processed").All()
	require.Len(t, done, 1)
	require.Equal(t, "listener.offboarding", done[0].LoggerName)
	require.EqualValues(t, 1, done[0].ContextMap()["equipment_outstanding"])
}

func TestOffboarding_IgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	teams := &fakeTeamRemover{}
	listener := NewOffboarding(teams, &fakeAssignmentFinder{}, nil)

	hired := employee.Hired{EventBase: shared.NewEventBase(employee.EventHired, employee.AggregateType, "EMP-2025-0001", testNow)}
	require.NoError(t, listener.Handle(context.Background(), hired))
	require.Empty(t, teams.calls)
}

func TestOffboarding_ReturnsErrorForRetry(t *testing.T) {
	t.Parallel()

	listener := NewOffboarding(&fakeTeamRemover{err: shared.ErrConflict}, &fakeAssignmentFinder{}, nil)

	err := listener.Handle(context.Background(), terminatedEvent())
	require.True(t, errors.Is(err, shared.ErrConflict))
}

func TestTeamCapacity_WarnsAtMaximumSize(t *testing.T) {
	t.Parallel()

	maxSize := 2
	tm, err := team.Create("TEAM-0001", "Platform", "", "engineering", nil, &maxSize, testNow)
	require.NoError(t, err)
	require.NoError(t, tm.AssignMember("EMP-2025-0001", team.RoleTeamLead, 100, testNow))
	require.NoError(t, tm.AssignMember("EMP-2025-0002", team.RoleMember, 50, testNow))
	released := tm.ReleaseEvents()

	core, logs := observer.New(zapcore.InfoLevel)
	listener := NewTeamCapacity(&fakeTeamReader{teams: map[string]*team.Team{"TEAM-0001": tm}}, zap.New(core))

	for _, ev := range released {
		require.NoError(t, listener.Handle(context.Background(), ev))
	}

	full := logs.FilterMessage("team reached maximum size").All()
	require.Len(t, full, 2)
	require.EqualValues(t, 150, full[0].ContextMap()["total_allocation"])
	require.Zero(t, logs.FilterMessage("team capacity updated").Len())
}

func TestTeamCapacity_MissingTeamIsError(t *testing.T) {
	t.Parallel()

	listener := NewTeamCapacity(&fakeTeamReader{}, nil)
	removed := team.EmployeeRemoved{
		EventBase: shared.NewEventBase(team.EventEmployeeRemoved, team.AggregateType, "TEAM-0009", testNow),
		TeamID:    "TEAM-0009",
	}

	err := listener.Handle(context.Background(), removed)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAudit_LogsEveryEvent(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	listener := NewAudit(zap.New(core))

	ev := terminatedEvent()
	require.NoError(t, listener.Handle(context.Background(), ev))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	require.Equal(t, ev.EventID(), entries[0].ContextMap()["event_id"])
	require.Equal(t, "employee", entries[0].ContextMap()["aggregate_type"])
}

func TestRegister(t *testing.T) {
	t.Parallel()

	sub := &recordingSubscriber{}
	Register(sub,
		NewOffboarding(&fakeTeamRemover{}, &fakeAssignmentFinder{}, nil),
		NewTeamCapacity(&fakeTeamReader{}, nil),
		NewAudit(nil),
	)

	require.Equal(t, []string{"offboarding"}, sub.subscriptions[employee.EventTerminated])
	require.Equal(t, []string{"team_capacity"}, sub.subscriptions[team.EventEmployeeAssigned])
	require.Equal(t, []string{"team_capacity"}, sub.subscriptions[team.EventEmployeeRemoved])
	require.Equal(t, []string{"audit"}, sub.subscriptions[events.AllEvents])
}
