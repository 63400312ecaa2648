package employee

import (
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// Termination は退職情報です。
type Termination struct {
	Date           time.Time
	LastWorkingDay time.Time
	Type           string
	Reason         string
}

// PositionChange は職位変更履歴の 1 件です。
type PositionChange struct {
	Position      Position
	Salary        Salary
	EffectiveDate time.Time
	Reason        string
}

// LocationChange は勤務地変更履歴の 1 件です。
type LocationChange struct {
	Location      WorkLocation
	EffectiveDate time.Time
	Reason        string
}

// Employee は社員集約です。退職後は Reinstate 以外の変更を受け付けません。
type Employee struct {
	shared.AggregateRoot

	id              ID
	info            PersonalInfo
	position        Position
	salary          Salary
	location        WorkLocation
	remotePolicy    RemoteWorkPolicy
	status          Status
	hireDate        time.Time
	termination     *Termination
	positionHistory []PositionChange
	locationHistory []LocationChange
}

// Hire は Active な社員を生成し employee.hired を記録します。
func Hire(id ID, info PersonalInfo, position Position, salary Salary, location WorkLocation, hireDate, now time.Time) (*Employee, error) {
	if _, err := ParseID(string(id)); err != nil {
		return nil, err
	}
	if err := position.Validate(); err != nil {
		return nil, err
	}
	if err := salary.Validate(); err != nil {
		return nil, err
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}
	hire := shared.DateOf(hireDate)
	if hire.After(shared.DateOf(now)) {
		return nil, ErrHireDateInFuture
	}
	if err := info.validateAgeAt(hire); err != nil {
		return nil, err
	}

	e := &Employee{
		id:       id,
		info:     info,
		position: position,
		salary:   salary,
		location: location,
		status:   StatusActive,
		hireDate: hire,
	}

	e.Record(Hired{
		EventBase:  shared.NewEventBase(EventHired, AggregateType, id.String(), now),
		EmployeeID: id.String(),
		FullName:   info.FullName(),
		Email:      info.Email().String(),
		Position:   position.Title(),
		Department: string(position.Department()),
		Salary:     salary.Annual().Amount().StringFixed(2),
		Currency:   salary.Currency(),
		Location:   location.String(),
		HireDate:   hire,
	})
	return e, nil
}

// UpdatePersonalInfo は個人情報を差し替えます。イベントは記録しません。
func (e *Employee) UpdatePersonalInfo(info PersonalInfo) error {
	if err := e.ensureNotTerminated(); err != nil {
		return err
	}
	if err := info.validateAgeAt(e.hireDate); err != nil {
		return err
	}
	e.info = info
	return nil
}

// ChangePosition は職位と給与を変更します。給与の減額は常に拒否されます。
func (e *Employee) ChangePosition(newPosition Position, newSalary Salary, effectiveDate time.Time, reason string, now time.Time) error {
	if err := e.ensureNotTerminated(); err != nil {
		return err
	}
	if err := newPosition.Validate(); err != nil {
		return err
	}
	if err := newSalary.Validate(); err != nil {
		return err
	}
	effective := shared.DateOf(effectiveDate)
	if effective.Before(shared.DateOf(now)) {
		return ErrEffectiveDateInPast
	}
	ok, err := e.salary.CanIncreaseTo(newSalary)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSalaryDecrease
	}

	previousPosition, previousSalary := e.position, e.salary
	e.position = newPosition
	e.salary = newSalary
	e.positionHistory = append(e.positionHistory, PositionChange{
		Position:      newPosition,
		Salary:        newSalary,
		EffectiveDate: effective,
		Reason:        reason,
	})

	e.Record(PositionChanged{
		EventBase:        shared.NewEventBase(EventPositionChanged, AggregateType, e.id.String(), now),
		EmployeeID:       e.id.String(),
		PreviousPosition: previousPosition.Title(),
		NewPosition:      newPosition.Title(),
		PreviousSalary:   previousSalary.Annual().Amount().StringFixed(2),
		NewSalary:        newSalary.Annual().Amount().StringFixed(2),
		Currency:         newSalary.Currency(),
		EffectiveDate:    effective,
		Reason:           reason,
	})
	return nil
}

func (e *Employee) ChangeLocation(newLocation WorkLocation, effectiveDate time.Time, reason string, now time.Time) error {
	if err := e.ensureNotTerminated(); err != nil {
		return err
	}
	if err := newLocation.Validate(); err != nil {
		return err
	}

	effective := shared.DateOf(effectiveDate)
	previous := e.location
	e.location = newLocation
	e.locationHistory = append(e.locationHistory, LocationChange{
		Location:      newLocation,
		EffectiveDate: effective,
		Reason:        reason,
	})

	e.Record(LocationChanged{
		EventBase:        shared.NewEventBase(EventLocationChanged, AggregateType, e.id.String(), now),
		EmployeeID:       e.id.String(),
		PreviousLocation: previous.String(),
		NewLocation:      newLocation.String(),
		EffectiveDate:    effective,
		Reason:           reason,
	})
	return nil
}

// ConfigureRemoteWork はリモート勤務ポリシーを設定します。nil で解除します。
func (e *Employee) ConfigureRemoteWork(policy RemoteWorkPolicy, now time.Time) error {
	if err := e.ensureNotTerminated(); err != nil {
		return err
	}
	if err := ValidateRemoteWorkPolicy(policy); err != nil {
		return err
	}

	e.remotePolicy = policy

	event := RemoteWorkConfigured{
		EventBase:  shared.NewEventBase(EventRemoteWorkConfigured, AggregateType, e.id.String(), now),
		EmployeeID: e.id.String(),
	}
	if policy != nil {
		event.PolicyType = string(policy.Type())
		event.RemoteDays = WeekdayNames(policy.RemoteDays())
	}
	e.Record(event)
	return nil
}

func (e *Employee) Terminate(terminationDate, lastWorkingDay time.Time, terminationType, reason string, now time.Time) error {
	if err := e.ensureNotTerminated(); err != nil {
		return err
	}
	termDate := shared.DateOf(terminationDate)
	lastDay := shared.DateOf(lastWorkingDay)
	if termDate.Before(shared.DateOf(now)) {
		return ErrTerminationDateInPast
	}
	if lastDay.After(termDate) {
		return ErrLastWorkingDayAfterTerm
	}
	kind := strings.TrimSpace(terminationType)
	if kind == "" {
		return ErrInvalidTerminationType
	}

	e.status = StatusTerminated
	e.termination = &Termination{
		Date:           termDate,
		LastWorkingDay: lastDay,
		Type:           kind,
		Reason:         reason,
	}

	e.Record(Terminated{
		EventBase:       shared.NewEventBase(EventTerminated, AggregateType, e.id.String(), now),
		EmployeeID:      e.id.String(),
		TerminationDate: termDate,
		LastWorkingDay:  lastDay,
		TerminationType: kind,
		Reason:          reason,
	})
	return nil
}

// Reinstate は退職済みの社員を Active に戻し、退職情報を消去します。
func (e *Employee) Reinstate(date time.Time, reason string, now time.Time) error {
	if e.status != StatusTerminated {
		return ErrNotTerminated
	}
	reinstatedOn := shared.DateOf(date)
	if reinstatedOn.Before(shared.DateOf(now)) {
		return ErrReinstatementDateInPast
	}

	e.status = StatusActive
	e.termination = nil

	e.Record(Reinstated{
		EventBase:         shared.NewEventBase(EventReinstated, AggregateType, e.id.String(), now),
		EmployeeID:        e.id.String(),
		ReinstatementDate: reinstatedOn,
		Reason:            reason,
	})
	return nil
}

func (e *Employee) ensureNotTerminated() error {
	if e.status == StatusTerminated {
		return ErrTerminated
	}
	return nil
}

func (e *Employee) ID() string                         { return e.id.String() }
func (e *Employee) EmployeeID() ID                     { return e.id }
func (e *Employee) PersonalInfo() PersonalInfo         { return e.info }
func (e *Employee) Position() Position                 { return e.position }
func (e *Employee) Salary() Salary                     { return e.salary }
func (e *Employee) Location() WorkLocation             { return e.location }
func (e *Employee) RemoteWorkPolicy() RemoteWorkPolicy { return e.remotePolicy }
func (e *Employee) Status() Status                     { return e.status }
func (e *Employee) HireDate() time.Time                { return e.hireDate }
func (e *Employee) IsActive() bool                     { return e.status == StatusActive }
func (e *Employee) IsTerminated() bool                 { return e.status == StatusTerminated }

func (e *Employee) Termination() *Termination {
	if e.termination == nil {
		return nil
	}
	t := *e.termination
	return &t
}

func (e *Employee) PositionHistory() []PositionChange {
	return append([]PositionChange(nil), e.positionHistory...)
}

func (e *Employee) LocationHistory() []LocationChange {
	return append([]LocationChange(nil), e.locationHistory...)
}

// Snapshot は永続化層との受け渡しに使う社員の状態です。
type Snapshot struct {
	ID              ID
	PersonalInfo    PersonalInfo
	Position        Position
	Salary          Salary
	Location        WorkLocation
	RemotePolicy    RemoteWorkPolicy
	Status          Status
	HireDate        time.Time
	Termination     *Termination
	PositionHistory []PositionChange
	LocationHistory []LocationChange
}

// Snapshot は現在の状態を返します。
func (e *Employee) Snapshot() Snapshot {
	return Snapshot{
		ID:              e.id,
		PersonalInfo:    e.info,
		Position:        e.position,
		Salary:          e.salary,
		Location:        e.location,
		RemotePolicy:    e.remotePolicy,
		Status:          e.status,
		HireDate:        e.hireDate,
		Termination:     e.Termination(),
		PositionHistory: e.PositionHistory(),
		LocationHistory: e.LocationHistory(),
	}
}

// Reconstitute は保存済みの状態から集約を復元します。イベントは記録されません。
func Reconstitute(s Snapshot) *Employee {
	var term *Termination
	if s.Termination != nil {
		t := *s.Termination
		term = &t
	}
	return &Employee{
		id:              s.ID,
		info:            s.PersonalInfo,
		position:        s.Position,
		salary:          s.Salary,
		location:        s.Location,
		remotePolicy:    s.RemotePolicy,
		status:          s.Status,
		hireDate:        shared.DateOf(s.HireDate),
		termination:     term,
		positionHistory: append([]PositionChange(nil), s.PositionHistory...),
		locationHistory: append([]LocationChange(nil), s.LocationHistory...),
	}
}
