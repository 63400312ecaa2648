package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"go.uber.org/zap"
)

const defaultInterval = time.Hour

// LeaveJobs は定期実行する休暇関連のユースケースです。
type LeaveJobs interface {
	RolloverForActiveEmployees(ctx context.Context, closingYear int) (leave.AccrualSummary, error)
	AccrueForActiveEmployees(ctx context.Context, year int, month time.Month) (leave.AccrualSummary, error)
	CompleteElapsed(ctx context.Context) (int, error)
}

// Scheduler は暦に従って年次締め・月次付与・完了処理を起動します。
// 各ジョブは成功するまで同じ暦単位で再試行され、成功後は次の年・月・日まで実行しません。
// 再実行は付与記録の一意キーにより重複付与になりません。
type Scheduler struct {
	jobs     LeaveJobs
	clock    shared.Clock
	logger   *zap.Logger
	interval time.Duration

	mu           sync.Mutex
	closedYear   int
	accruedMonth string
	sweptDay     time.Time
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New は Scheduler を生成します。
func New(jobs LeaveJobs, clock shared.Clock, opts ...Option) *Scheduler {
	if clock == nil {
		clock = shared.RealClock{}
	}
	s := &Scheduler{
		jobs:     jobs,
		clock:    clock,
		logger:   zap.NewNop(),
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scheduler")
	return s
}

// Run は起動直後と interval ごとに Tick を実行します。ジョブの失敗はログに残し、ループは止めません。
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	s.tickAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.tickAndLog(ctx)
		}
	}
}

func (s *Scheduler) tickAndLog(ctx context.Context) {
	if err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("scheduled job failed", zap.Error(err))
	}
}

// Tick は期限が来ているジョブを順に実行します。
// 年が変わっていれば前年を締めてから当月分を付与し、最後に終了済み申請を完了にします。
func (s *Scheduler) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	today := shared.DateOf(now)
	var errs []error

	if closing := now.Year() - 1; s.closedYear < closing {
		summary, err := s.jobs.RolloverForActiveEmployees(ctx, closing)
		if err != nil {
			errs = append(errs, fmt.Errorf("rollover %d: %w", closing, err))
		} else {
			s.closedYear = closing
			s.logger.Info("year closed", zap.Int("closing_year", closing), zap.Int("employees", summary.Employees), zap.Int("applied", summary.Applied))
		}
	}

	// 締めが失敗した年は付与を見送り、前年の残高が新年度の付与と混ざらないようにする。
	if s.closedYear >= now.Year()-1 {
		period, err := leave.Period(now.Year(), now.Month())
		if err != nil {
			return err
		}
		if s.accruedMonth != period {
			summary, err := s.jobs.AccrueForActiveEmployees(ctx, now.Year(), now.Month())
			if err != nil {
				errs = append(errs, fmt.Errorf("accrue %s: %w", period, err))
			} else {
				s.accruedMonth = period
				s.logger.Info("monthly accrual done", zap.String("period", period), zap.Int("applied", summary.Applied), zap.Int("skipped", summary.Skipped))
			}
		}
	}

	if !s.sweptDay.Equal(today) {
		completed, err := s.jobs.CompleteElapsed(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("complete elapsed leave: %w", err))
		} else {
			s.sweptDay = today
			s.logger.Info("leave completion sweep done", zap.Time("date", today), zap.Int("completed", completed))
		}
	}

	return errors.Join(errs...)
}
