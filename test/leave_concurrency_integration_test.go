//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/workforce-lifecycle/internal/adapters/repository/postgres"
	"github.com/ogurasousui/workforce-lifecycle/internal/app"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/config"
	pg "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const retryLogMessage = "unit of work conflict, retrying"

func newConcurrencyApp(t *testing.T, now time.Time) (context.Context, *pgxpool.Pool, *app.App, *observer.ObservedLogs) {
	t.Helper()

	cfg, err := config.Load(configPathFromEnv())
	require.NoError(t, err, "failed to load config")
	require.NoError(t, resetMigrations(cfg.Database.DSN(), migrationsDir), "failed to migrate database")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pool, err := pg.NewPool(ctx, cfg.Database, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	a := app.New(pool, cfg, zap.New(core), stubClock{now: now})
	go func() { _ = a.Bus.Run(ctx) }()
	return ctx, pool, a, logs
}

func openVacationBalance(ctx context.Context, t *testing.T, a *app.App, employeeID, days string) {
	t.Helper()
	_, err := a.Leave.AdjustBalance(ctx, leave.AdjustBalanceInput{
		EmployeeID: employeeID,
		Year:       2025,
		Type:       "Vacation",
		Days:       days,
		Reason:     "opening balance",
	})
	require.NoError(t, err)
}

func TestLeaveRequest_ConcurrentReservationsNeverOverdraw(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	ctx, _, a, _ := newConcurrencyApp(t, now)

	contender := hire(ctx, t, a, "contender@example.com", now)
	openVacationBalance(ctx, t, a, contender.ID(), "5")

	periods := [][2]time.Time{
		{time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)},
	}

	start := make(chan struct{})
	errs := make([]error, len(periods))
	var wg sync.WaitGroup
	for i, p := range periods {
		wg.Add(1)
		go func(i int, p [2]time.Time) {
			defer wg.Done()
			<-start
			_, errs[i] = a.Leave.RequestLeave(ctx, leave.RequestLeaveInput{
				EmployeeID: contender.ID(),
				Type:       "Vacation",
				StartDate:  p[0],
				EndDate:    p[1],
			})
		}(i, p)
	}
	close(start)
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, leave.ErrInsufficientBalance):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, rejected)

	balance, err := a.Leave.GetBalance(ctx, contender.ID(), 2025, "Vacation")
	require.NoError(t, err)
	require.True(t, balance.Pending().Equal(decimal.NewFromInt(3)), "pending %s", balance.Pending())
	require.True(t, balance.Available().Equal(decimal.NewFromInt(2)), "available %s", balance.Available())
}

func TestLeaveRequest_RetriesAfterSerializationConflict(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	ctx, pool, a, logs := newConcurrencyApp(t, now)

	contender := hire(ctx, t, a, "contender@example.com", now)
	openVacationBalance(ctx, t, a, contender.ID(), "5")

	tm := pg.NewTransactionManager(pool)
	balances := postgres.NewLeaveBalanceRepository(pool)
	key := leave.BalanceKey{EmployeeID: employee.ID(contender.ID()), Year: 2025, Type: leave.TypeVacation}
	policy := leave.DefaultPolicies().For(leave.TypeVacation)

	locked := make(chan struct{})
	release := make(chan struct{})
	holderErr := make(chan error, 1)
	go func() {
		holderErr <- tm.WithinReadWrite(ctx, func(txCtx context.Context) error {
			b, err := balances.GetForUpdate(txCtx, key, policy)
			if err != nil {
				return err
			}
			close(locked)
			<-release
			if err := b.AddToPending(decimal.NewFromInt(4)); err != nil {
				return err
			}
			return balances.Save(txCtx, b)
		})
	}()
	<-locked

	requestErr := make(chan error, 1)
	go func() {
		_, err := a.Leave.RequestLeave(ctx, leave.RequestLeaveInput{
			EmployeeID: contender.ID(),
			Type:       "Vacation",
			StartDate:  time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC),
		})
		requestErr <- err
	}()

	require.Eventually(t, func() bool {
		var waiting int
		err := pool.QueryRow(ctx, `SELECT count(*) FROM pg_locks WHERE NOT granted`).Scan(&waiting)
		return err == nil && waiting > 0
	}, 5*time.Second, 20*time.Millisecond, "request should wait on the balance row lock")

	close(release)
	require.NoError(t, <-holderErr)
	require.ErrorIs(t, <-requestErr, leave.ErrInsufficientBalance)
	require.GreaterOrEqual(t, logs.FilterMessage(retryLogMessage).Len(), 1, "blocked request should be retried after the conflict")

	balance, err := a.Leave.GetBalance(ctx, contender.ID(), 2025, "Vacation")
	require.NoError(t, err)
	require.True(t, balance.Pending().Equal(decimal.NewFromInt(4)), "pending %s", balance.Pending())
	require.True(t, balance.Available().Equal(decimal.NewFromInt(1)), "available %s", balance.Available())
}
