package employee

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock shared.Clock
	uow   *shared.UnitOfWork
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	HireEmployee(ctx context.Context, in HireEmployeeInput) (*Employee, error)
	ChangePosition(ctx context.Context, in ChangePositionInput) (*Employee, error)
	ChangeLocation(ctx context.Context, in ChangeLocationInput) (*Employee, error)
	ConfigureRemoteWork(ctx context.Context, in ConfigureRemoteWorkInput) (*Employee, error)
	UpdatePersonalInfo(ctx context.Context, in UpdatePersonalInfoInput) (*Employee, error)
	TerminateEmployee(ctx context.Context, in TerminateEmployeeInput) (*Employee, error)
	ReinstateEmployee(ctx context.Context, in ReinstateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock shared.Clock, uow *shared.UnitOfWork) *Service {
	if clock == nil {
		clock = shared.RealClock{}
	}
	if uow == nil {
		uow = shared.NewUnitOfWork(nil)
	}
	return &Service{repo: repo, clock: clock, uow: uow}
}

// PersonalInfoInput は個人情報の入力です。
type PersonalInfoInput struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth *time.Time
}

// HireEmployeeInput は入社時の入力です。
type HireEmployeeInput struct {
	PersonalInfo PersonalInfoInput
	Position     string
	Salary       string
	Currency     string
	PayFrequency string
	Location     string
	HireDate     time.Time
}

type ChangePositionInput struct {
	ID            string
	Position      string
	Salary        string
	Currency      string
	PayFrequency  string
	EffectiveDate time.Time
	Reason        string
}

type ChangeLocationInput struct {
	ID            string
	Location      string
	EffectiveDate time.Time
	Reason        string
}

// ConfigureRemoteWorkInput の PolicyType が空の場合はポリシーを解除します。
type ConfigureRemoteWorkInput struct {
	ID         string
	PolicyType string
	RemoteDays []string
}

type UpdatePersonalInfoInput struct {
	ID           string
	PersonalInfo PersonalInfoInput
}

type TerminateEmployeeInput struct {
	ID              string
	TerminationDate time.Time
	LastWorkingDay  time.Time
	Type            string
	Reason          string
}

type ReinstateEmployeeInput struct {
	ID     string
	Date   time.Time
	Reason string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize  int
	PageToken string
	Status    *Status
	Position  string
	Location  string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// HireEmployee は社員番号を採番して新しい社員を登録します。
func (s *Service) HireEmployee(ctx context.Context, in HireEmployeeInput) (*Employee, error) {
	info, err := buildPersonalInfo(in.PersonalInfo)
	if err != nil {
		return nil, err
	}
	position, err := ParsePosition(in.Position)
	if err != nil {
		return nil, err
	}
	salary, err := buildSalary(in.Salary, in.Currency, in.PayFrequency)
	if err != nil {
		return nil, err
	}
	location, err := ParseWorkLocation(in.Location)
	if err != nil {
		return nil, err
	}

	var hired *Employee
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		exists, err := s.repo.EmailExists(txCtx, info.Email(), "")
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}

		now := s.clock.Now()
		id, err := s.repo.NextIdentity(txCtx, now.Year())
		if err != nil {
			return nil, err
		}

		emp, err := Hire(id, info, position, salary, location, in.HireDate, now)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, emp); err != nil {
			return nil, err
		}

		hired = emp
		return emp.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return hired, nil
}

// ChangePosition は職位と給与を変更します。
func (s *Service) ChangePosition(ctx context.Context, in ChangePositionInput) (*Employee, error) {
	position, err := ParsePosition(in.Position)
	if err != nil {
		return nil, err
	}
	salary, err := buildSalary(in.Salary, in.Currency, in.PayFrequency)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, in.ID, func(_ context.Context, e *Employee, now time.Time) error {
		return e.ChangePosition(position, salary, in.EffectiveDate, in.Reason, now)
	})
}

// ChangeLocation は勤務地を変更します。
func (s *Service) ChangeLocation(ctx context.Context, in ChangeLocationInput) (*Employee, error) {
	location, err := ParseWorkLocation(in.Location)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, in.ID, func(_ context.Context, e *Employee, now time.Time) error {
		return e.ChangeLocation(location, in.EffectiveDate, in.Reason, now)
	})
}

// ConfigureRemoteWork はリモート勤務ポリシーを設定または解除します。
func (s *Service) ConfigureRemoteWork(ctx context.Context, in ConfigureRemoteWorkInput) (*Employee, error) {
	var policy RemoteWorkPolicy
	if strings.TrimSpace(in.PolicyType) != "" {
		p, err := ParseRemoteWorkPolicy(in.PolicyType, in.RemoteDays)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	return s.mutate(ctx, in.ID, func(_ context.Context, e *Employee, now time.Time) error {
		return e.ConfigureRemoteWork(policy, now)
	})
}

// UpdatePersonalInfo は個人情報を更新します。メールアドレスは他の社員と重複できません。
func (s *Service) UpdatePersonalInfo(ctx context.Context, in UpdatePersonalInfoInput) (*Employee, error) {
	info, err := buildPersonalInfo(in.PersonalInfo)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, in.ID, func(txCtx context.Context, e *Employee, _ time.Time) error {
		exists, err := s.repo.EmailExists(txCtx, info.Email(), e.EmployeeID())
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailAlreadyExists
		}
		return e.UpdatePersonalInfo(info)
	})
}

// TerminateEmployee は社員を退職させます。
func (s *Service) TerminateEmployee(ctx context.Context, in TerminateEmployeeInput) (*Employee, error) {
	return s.mutate(ctx, in.ID, func(_ context.Context, e *Employee, now time.Time) error {
		return e.Terminate(in.TerminationDate, in.LastWorkingDay, in.Type, in.Reason, now)
	})
}

// ReinstateEmployee は退職済みの社員を復職させます。
func (s *Service) ReinstateEmployee(ctx context.Context, in ReinstateEmployeeInput) (*Employee, error) {
	return s.mutate(ctx, in.ID, func(_ context.Context, e *Employee, now time.Time) error {
		return e.Reinstate(in.Date, in.Reason, now)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := ParseID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.uow.Read(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	filter := ListFilter{Limit: limit, Offset: offset}
	if in.Status != nil {
		status, err := ParseStatus(string(*in.Status))
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if strings.TrimSpace(in.Position) != "" {
		position, err := ParsePosition(in.Position)
		if err != nil {
			return nil, err
		}
		filter.Position = &position
	}
	if strings.TrimSpace(in.Location) != "" {
		location, err := ParseWorkLocation(in.Location)
		if err != nil {
			return nil, err
		}
		filter.Location = &location
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.uow.Read(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func (s *Service) mutate(ctx context.Context, rawID string, fn func(context.Context, *Employee, time.Time) error) (*Employee, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		emp, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(txCtx, emp, s.clock.Now()); err != nil {
			return nil, err
		}

		if err := s.repo.Save(txCtx, emp); err != nil {
			return nil, err
		}

		updated = emp
		return emp.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

func buildPersonalInfo(in PersonalInfoInput) (PersonalInfo, error) {
	email, err := shared.NewEmail(in.Email)
	if err != nil {
		return PersonalInfo{}, err
	}
	phone, err := shared.NewPhoneNumber(in.Phone)
	if err != nil {
		return PersonalInfo{}, err
	}
	return NewPersonalInfo(in.FirstName, in.MiddleName, in.LastName, email, phone, in.DateOfBirth)
}

func buildSalary(amount, currency, frequency string) (Salary, error) {
	freq, err := ParsePayFrequency(frequency)
	if err != nil {
		return Salary{}, err
	}
	return ParseSalary(amount, currency, freq)
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
