package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service は休暇申請と残高台帳のユースケースをまとめます。
// 台帳を変更するユースケースは対象行をロックした 1 トランザクションで実行されます。
type Service struct {
	requests  Repository
	balances  BalanceRepository
	accruals  AccrualRepository
	employees EmployeeDirectory
	clock     shared.Clock
	uow       *shared.UnitOfWork
	policies  Policies
	window    time.Duration
	logger    *zap.Logger
}

// Option は Service の設定を変更します。
type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.Named("leave.service")
		}
	}
}

// WithCancellationWindow は開始前に取り消しを禁止する時間幅を設定します。
func WithCancellationWindow(window time.Duration) Option {
	return func(s *Service) {
		if window >= 0 {
			s.window = window
		}
	}
}

func WithPolicies(policies Policies) Option {
	return func(s *Service) {
		if len(policies) > 0 {
			s.policies = policies
		}
	}
}

// NewService は Service を生成します。
func NewService(requests Repository, balances BalanceRepository, accruals AccrualRepository, employees EmployeeDirectory, clock shared.Clock, uow *shared.UnitOfWork, opts ...Option) *Service {
	if clock == nil {
		clock = shared.RealClock{}
	}
	if uow == nil {
		uow = shared.NewUnitOfWork(nil)
	}
	s := &Service{
		requests:  requests,
		balances:  balances,
		accruals:  accruals,
		employees: employees,
		clock:     clock,
		uow:       uow,
		policies:  DefaultPolicies(),
		window:    DefaultCancellationWindow,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestLeaveInput は休暇申請の入力です。
type RequestLeaveInput struct {
	EmployeeID string
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

type RejectLeaveInput struct {
	LeaveID    string
	RejecterID string
	Reason     string
}

type AdjustBalanceInput struct {
	EmployeeID string
	Year       int
	Type       string
	Days       string
	Reason     string
}

// AccrualSummary は一括付与の結果です。
type AccrualSummary struct {
	Period    string
	Employees int
	Applied   int
	Skipped   int
	Failed    int
}

// RequestLeave は休暇を申請します。残高管理対象の種別では、台帳行をロックしたまま残高確認と申請中日数の確保を行います。
func (s *Service) RequestLeave(ctx context.Context, in RequestLeaveInput) (*Request, error) {
	employeeID, err := employee.ParseID(in.EmployeeID)
	if err != nil {
		return nil, err
	}
	leaveType, err := ParseType(in.Type)
	if err != nil {
		return nil, err
	}
	period, err := shared.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var created *Request
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		if err := s.ensureActive(txCtx, employeeID); err != nil {
			return nil, err
		}
		overlapping, err := s.requests.HasOverlapping(txCtx, employeeID, period, "")
		if err != nil {
			return nil, err
		}
		if overlapping {
			return nil, fmt.Errorf("%w: %s", ErrOverlappingLeave, period)
		}

		now := s.clock.Now()
		days := DaysOf(period.Days())

		var balance *Balance
		if leaveType.RequiresBalance() {
			key := BalanceKey{EmployeeID: employeeID, Year: period.Start().Year(), Type: leaveType}
			balance, err = s.balances.GetForUpdate(txCtx, key, s.policies.For(leaveType))
			if err != nil {
				return nil, err
			}
			if err := balance.AddToPending(days); err != nil {
				s.logger.Warn("leave request rejected by balance",
					zap.String("employee_id", employeeID.String()),
					zap.String("type", string(leaveType)),
					zap.String("days", days.String()),
					zap.String("available", balance.Available().String()),
				)
				return nil, err
			}
		}

		id, err := s.requests.NextIdentity(txCtx, now.Year())
		if err != nil {
			return nil, err
		}
		request, err := NewRequest(id, employeeID, leaveType, period, in.Reason, now)
		if err != nil {
			return nil, err
		}

		if balance != nil {
			if err := s.balances.Save(txCtx, balance); err != nil {
				return nil, err
			}
		}
		if err := s.requests.Save(txCtx, request); err != nil {
			return nil, err
		}

		s.logger.Info("leave request created",
			zap.String("leave_id", id.String()),
			zap.String("employee_id", employeeID.String()),
			zap.String("type", string(leaveType)),
			zap.String("days", days.String()),
		)
		created = request
		return request.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// ApproveLeave は申請を承認し、申請中の日数を使用済みへ移します。
func (s *Service) ApproveLeave(ctx context.Context, leaveID, approverID string) (*Request, error) {
	approver, err := employee.ParseID(approverID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, leaveID, func(txCtx context.Context, r *Request, now time.Time) error {
		if _, err := s.employees.FindByID(txCtx, approver); err != nil {
			return err
		}
		if err := r.Approve(approver, now); err != nil {
			return err
		}
		return s.applyLedger(txCtx, r, "leave approved", (*Balance).Deduct)
	})
}

// RejectLeave は申請を却下し、申請中の日数を解放します。
func (s *Service) RejectLeave(ctx context.Context, in RejectLeaveInput) (*Request, error) {
	rejecter, err := employee.ParseID(in.RejecterID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, in.LeaveID, func(txCtx context.Context, r *Request, now time.Time) error {
		if _, err := s.employees.FindByID(txCtx, rejecter); err != nil {
			return err
		}
		if err := r.Reject(rejecter, in.Reason, now); err != nil {
			return err
		}
		return s.applyLedger(txCtx, r, "leave rejected", (*Balance).RemoveFromPending)
	})
}

// CancelLeave は申請を取り消します。承認済みなら使用済み日数を、申請中なら確保した日数を戻します。
func (s *Service) CancelLeave(ctx context.Context, leaveID string) (*Request, error) {
	return s.mutate(ctx, leaveID, func(txCtx context.Context, r *Request, now time.Time) error {
		previous := r.Status()
		if err := r.Cancel(now, s.window); err != nil {
			return err
		}
		if previous == StatusApproved {
			return s.applyLedger(txCtx, r, "balance restored", (*Balance).Restore)
		}
		return s.applyLedger(txCtx, r, "pending released", (*Balance).RemoveFromPending)
	})
}

// CompleteElapsed は終了日を過ぎた承認済み申請を完了にし、完了件数を返します。
// 申請ごとに別トランザクションで処理し、1 件の失敗で残りを止めません。
func (s *Service) CompleteElapsed(ctx context.Context) (int, error) {
	today := shared.Today(s.clock)

	var candidates []*Request
	if err := s.uow.Read(ctx, func(txCtx context.Context) error {
		var err error
		candidates, err = s.requests.FindApprovedEndedBefore(txCtx, today)
		return err
	}); err != nil {
		return 0, err
	}

	completed := 0
	var errs []error
	for _, candidate := range candidates {
		_, err := s.mutate(ctx, candidate.ID(), func(_ context.Context, r *Request, now time.Time) error {
			return r.Complete(now)
		})
		if err != nil {
			if errors.Is(err, ErrNotCompletable) {
				continue
			}
			s.logger.Error("leave completion failed", zap.String("leave_id", candidate.ID()), zap.Error(err))
			errs = append(errs, fmt.Errorf("complete %s: %w", candidate.ID(), err))
			continue
		}
		completed++
	}
	return completed, errors.Join(errs...)
}

// AccrueMonthly は社員 1 名に year/month 分の月次付与を行い、付与した種別数を返します。
// 同じ期間の再実行は付与記録の一意キーにより何もしません。
func (s *Service) AccrueMonthly(ctx context.Context, employeeID string, year int, month time.Month) (int, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return 0, err
	}
	period, err := Period(year, month)
	if err != nil {
		return 0, err
	}

	applied := 0
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		applied = 0
		now := s.clock.Now()
		for _, policy := range s.policies.Accruing() {
			key := BalanceKey{EmployeeID: id, Year: year, Type: policy.Type}
			balance, err := s.balances.GetForUpdate(txCtx, key, policy)
			if err != nil {
				return nil, err
			}

			before := balance.Available()
			record := newAccrual(key, period, AccrualScheduled, policy.AccrualRate, before, before.Add(policy.AccrualRate), "", now)
			inserted, err := s.accruals.Record(txCtx, record)
			if err != nil {
				return nil, err
			}
			if !inserted {
				continue
			}
			if err := balance.Accrue(policy.AccrualRate); err != nil {
				return nil, err
			}
			if err := s.balances.Save(txCtx, balance); err != nil {
				return nil, err
			}
			applied++

			s.logger.Info("leave accrued",
				zap.String("employee_id", id.String()),
				zap.String("type", string(policy.Type)),
				zap.String("period", period),
				zap.String("days", policy.AccrualRate.String()),
				zap.String("available", balance.Available().String()),
			)
		}
		return nil, nil
	}); err != nil {
		return 0, err
	}

	return applied, nil
}

// AccrueForActiveEmployees は全在籍社員に月次付与を行います。社員ごとに別トランザクションです。
func (s *Service) AccrueForActiveEmployees(ctx context.Context, year int, month time.Month) (AccrualSummary, error) {
	period, err := Period(year, month)
	if err != nil {
		return AccrualSummary{}, err
	}
	summary := AccrualSummary{Period: period}

	var ids []employee.ID
	if err := s.uow.Read(ctx, func(txCtx context.Context) error {
		var err error
		ids, err = s.employees.ListActiveIDs(txCtx)
		return err
	}); err != nil {
		return summary, err
	}
	summary.Employees = len(ids)

	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, errors.Join(append(errs, err)...)
		}
		applied, err := s.AccrueMonthly(ctx, id.String(), year, month)
		if err != nil {
			summary.Failed++
			s.logger.Error("leave accrual failed", zap.String("employee_id", id.String()), zap.String("period", period), zap.Error(err))
			errs = append(errs, fmt.Errorf("accrue %s: %w", id, err))
			continue
		}
		if applied == 0 {
			summary.Skipped++
			continue
		}
		summary.Applied++
	}

	s.logger.Info("leave accrual completed",
		zap.String("period", period),
		zap.Int("employees", summary.Employees),
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, errors.Join(errs...)
}

// RolloverYear は closingYear の残高を失効させ、繰越上限までを翌年の carriedOver に移します。
func (s *Service) RolloverYear(ctx context.Context, employeeID string, closingYear int) (int, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return 0, err
	}
	period, err := Period(closingYear, time.December)
	if err != nil {
		return 0, err
	}

	rolled := 0
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		rolled = 0
		now := s.clock.Now()
		for _, t := range Types() {
			if !t.RequiresBalance() {
				continue
			}
			policy := s.policies.For(t)
			closingKey := BalanceKey{EmployeeID: id, Year: closingYear, Type: t}
			closing, err := s.balances.Get(txCtx, closingKey)
			if errors.Is(err, ErrBalanceNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			closing, err = s.balances.GetForUpdate(txCtx, closingKey, policy)
			if err != nil {
				return nil, err
			}
			next, err := s.balances.GetForUpdate(txCtx, BalanceKey{EmployeeID: id, Year: closingYear + 1, Type: t}, policy)
			if err != nil {
				return nil, err
			}

			remaining := closing.Available()
			carry, err := closing.CloseYear()
			if err != nil {
				return nil, err
			}
			before := next.Available()
			record := newAccrual(next.Key(), period, AccrualCarryOver, carry, before, before.Add(carry), fmt.Sprintf("forfeited %s from %d", remaining, closingYear), now)
			inserted, err := s.accruals.Record(txCtx, record)
			if err != nil {
				return nil, err
			}
			if !inserted {
				continue
			}

			if err := next.CarryOver(carry); err != nil {
				return nil, err
			}
			if err := s.balances.Save(txCtx, closing); err != nil {
				return nil, err
			}
			if err := s.balances.Save(txCtx, next); err != nil {
				return nil, err
			}
			rolled++

			s.logger.Info("leave year rolled over",
				zap.String("employee_id", id.String()),
				zap.String("type", string(t)),
				zap.Int("closing_year", closingYear),
				zap.String("forfeited", remaining.String()),
				zap.String("carried_over", carry.String()),
			)
		}
		return nil, nil
	}); err != nil {
		return 0, err
	}

	return rolled, nil
}

// RolloverForActiveEmployees は全在籍社員の closingYear を締めます。社員ごとに別トランザクションです。
// Applied は 1 種別以上繰り越した社員数です。
func (s *Service) RolloverForActiveEmployees(ctx context.Context, closingYear int) (AccrualSummary, error) {
	period, err := Period(closingYear, time.December)
	if err != nil {
		return AccrualSummary{}, err
	}
	summary := AccrualSummary{Period: period}

	var ids []employee.ID
	if err := s.uow.Read(ctx, func(txCtx context.Context) error {
		var err error
		ids, err = s.employees.ListActiveIDs(txCtx)
		return err
	}); err != nil {
		return summary, err
	}
	summary.Employees = len(ids)

	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, errors.Join(append(errs, err)...)
		}
		rolled, err := s.RolloverYear(ctx, id.String(), closingYear)
		if err != nil {
			summary.Failed++
			s.logger.Error("leave rollover failed", zap.String("employee_id", id.String()), zap.Int("closing_year", closingYear), zap.Error(err))
			errs = append(errs, fmt.Errorf("rollover %s: %w", id, err))
			continue
		}
		if rolled == 0 {
			summary.Skipped++
			continue
		}
		summary.Applied++
	}

	s.logger.Info("leave rollover completed",
		zap.Int("closing_year", closingYear),
		zap.Int("employees", summary.Employees),
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, errors.Join(errs...)
}

// AdjustBalance は手動の付与・減算を行い、調整記録を残します。
func (s *Service) AdjustBalance(ctx context.Context, in AdjustBalanceInput) (*Balance, error) {
	id, err := employee.ParseID(in.EmployeeID)
	if err != nil {
		return nil, err
	}
	leaveType, err := ParseType(in.Type)
	if err != nil {
		return nil, err
	}
	days, err := ParseDays(in.Days)
	if err != nil {
		return nil, err
	}
	period, err := Period(in.Year, s.clock.Now().Month())
	if err != nil {
		return nil, err
	}

	var adjusted *Balance
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		if _, err := s.employees.FindByID(txCtx, id); err != nil {
			return nil, err
		}
		now := s.clock.Now()
		key := BalanceKey{EmployeeID: id, Year: in.Year, Type: leaveType}
		balance, err := s.balances.GetForUpdate(txCtx, key, s.policies.For(leaveType))
		if err != nil {
			return nil, err
		}

		before := balance.Available()
		if err := balance.Adjust(days); err != nil {
			return nil, err
		}
		if _, err := s.accruals.Record(txCtx, newAccrual(key, period, AccrualAdjustment, days, before, balance.Available(), in.Reason, now)); err != nil {
			return nil, err
		}
		if err := s.balances.Save(txCtx, balance); err != nil {
			return nil, err
		}

		s.logger.Info("leave balance adjusted",
			zap.String("employee_id", id.String()),
			zap.String("type", string(leaveType)),
			zap.Int("year", in.Year),
			zap.String("days", days.String()),
			zap.String("reason", in.Reason),
		)
		adjusted = balance
		return nil, nil
	}); err != nil {
		return nil, err
	}

	return adjusted, nil
}

func (s *Service) GetBalance(ctx context.Context, employeeID string, year int, leaveType string) (*Balance, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	t, err := ParseType(leaveType)
	if err != nil {
		return nil, err
	}
	var balance *Balance
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		balance, err = s.balances.Get(txCtx, BalanceKey{EmployeeID: id, Year: year, Type: t})
		return err
	})
	return balance, err
}

func (s *Service) ListBalances(ctx context.Context, employeeID string, year int) ([]*Balance, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	var balances []*Balance
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		balances, err = s.balances.ListByEmployee(txCtx, id, year)
		return err
	})
	return balances, err
}

func (s *Service) ListAccruals(ctx context.Context, employeeID string, year int) ([]Accrual, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	var accruals []Accrual
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		accruals, err = s.accruals.ListByEmployee(txCtx, id, year)
		return err
	})
	return accruals, err
}

func (s *Service) GetLeave(ctx context.Context, leaveID string) (*Request, error) {
	id, err := ParseID(leaveID)
	if err != nil {
		return nil, err
	}
	var request *Request
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		request, err = s.requests.FindByID(txCtx, id)
		return err
	})
	return request, err
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID string) ([]*Request, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	var requests []*Request
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		requests, err = s.requests.FindByEmployee(txCtx, id)
		return err
	})
	return requests, err
}

func (s *Service) ListPending(ctx context.Context) ([]*Request, error) {
	var requests []*Request
	err := s.uow.Read(ctx, func(txCtx context.Context) error {
		var err error
		requests, err = s.requests.FindPending(txCtx)
		return err
	})
	return requests, err
}

// ListApprovedInPeriod は period と重なる承認済み申請を返します。
func (s *Service) ListApprovedInPeriod(ctx context.Context, start, end time.Time) ([]*Request, error) {
	period, err := shared.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	var requests []*Request
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		requests, err = s.requests.FindApprovedInPeriod(txCtx, period)
		return err
	})
	return requests, err
}

func (s *Service) mutate(ctx context.Context, rawID string, fn func(context.Context, *Request, time.Time) error) (*Request, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	var updated *Request
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		r, err := s.requests.FindByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(txCtx, r, s.clock.Now()); err != nil {
			return nil, err
		}
		if err := s.requests.Save(txCtx, r); err != nil {
			return nil, err
		}
		updated = r
		return r.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// applyLedger は残高管理対象の申請について台帳行をロックし op を適用して保存します。
func (s *Service) applyLedger(ctx context.Context, r *Request, message string, op func(*Balance, decimal.Decimal) error) error {
	if !r.Type().RequiresBalance() {
		return nil
	}
	key := BalanceKey{EmployeeID: r.EmployeeID(), Year: r.BalanceYear(), Type: r.Type()}
	balance, err := s.balances.GetForUpdate(ctx, key, s.policies.For(r.Type()))
	if err != nil {
		return err
	}
	days := DaysOf(r.TotalDays())
	if err := op(balance, days); err != nil {
		return err
	}
	if err := s.balances.Save(ctx, balance); err != nil {
		return err
	}

	s.logger.Info(message,
		zap.String("leave_id", r.ID()),
		zap.String("employee_id", r.EmployeeID().String()),
		zap.String("days", days.String()),
		zap.String("used", balance.Used().String()),
		zap.String("pending", balance.Pending().String()),
		zap.String("available", balance.Available().String()),
	)
	return nil
}

func (s *Service) ensureActive(ctx context.Context, id employee.ID) error {
	emp, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if emp.IsTerminated() {
		return fmt.Errorf("%w: %s", ErrEmployeeNotActive, id)
	}
	return nil
}
