package app

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/config"
	pg "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

func testConfig() *config.Config {
	return &config.Config{
		Transaction: config.TransactionConfig{MaxAttempts: 3},
		Events:      config.EventsConfig{Workers: 1, QueueSize: 8, MaxAttempts: 1},
		Leave:       config.LeaveConfig{CancellationWindow: 24 * time.Hour},
	}
}

func TestNew_WiresServices(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := New(mock, testConfig(), zaptest.NewLogger(t), nil)
	require.NotNil(t, a.Bus)
	require.NotNil(t, a.Outbox)
	require.NotNil(t, a.Employees)
	require.NotNil(t, a.Equipment)
	require.NotNil(t, a.Teams)
	require.NotNil(t, a.Leave)
}

func TestNew_AccrualRunsThroughReadOnlyTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pg.ReadOnlyOptions)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM employees WHERE status = $1 ORDER BY id`)).
		WithArgs(string(employee.StatusActive)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	a := New(mock, testConfig(), zaptest.NewLogger(t), stubClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)})
	summary, err := a.Leave.AccrueForActiveEmployees(context.Background(), 2025, time.March)
	require.NoError(t, err)
	require.Equal(t, leave.AccrualSummary{Period: "2025-03"}, summary)
	require.NoError(t, mock.ExpectationsWereMet())
}
