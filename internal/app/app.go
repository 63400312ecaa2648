package app

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-lifecycle/internal/adapters/listener"
	"github.com/ogurasousui/workforce-lifecycle/internal/adapters/repository/postgres"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/equipment"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/team"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/config"
	pg "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/events"
	"go.uber.org/zap"
)

// Database はリポジトリとトランザクション管理が共有する接続です。*pgxpool.Pool が満たします。
type Database interface {
	pg.Queryer
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// App はユースケースとイベント配送を組み立てた結果です。
type App struct {
	Bus       *events.Bus
	Outbox    *postgres.OutboxRepository
	Employees *employee.Service
	Equipment *equipment.Service
	Teams     *team.Service
	Leave     *leave.Service
}

// New は設定に従ってリポジトリ・ユニットオブワーク・サービス・リスナーを接続します。
// outbox.enabled のときだけイベントを outbox テーブルへ書き込みます。
func New(db Database, cfg *config.Config, logger *zap.Logger, clock shared.Clock) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.RealClock{}
	}

	bus := events.NewBus(logger,
		events.WithWorkers(cfg.Events.Workers),
		events.WithQueueSize(cfg.Events.QueueSize),
		events.WithRetry(cfg.Events.MaxAttempts, cfg.Events.RetryBackoff...),
	)
	outboxRepo := postgres.NewOutboxRepository(db)

	opts := []shared.UnitOfWorkOption{
		shared.WithDispatcher(bus),
		shared.WithMaxAttempts(cfg.Transaction.MaxAttempts),
		shared.WithLogger(logger),
	}
	if cfg.Outbox.Enabled {
		opts = append(opts, shared.WithOutbox(outboxRepo))
	}
	uow := shared.NewUnitOfWork(pg.NewTransactionManager(db, pg.WithLockTimeout(cfg.Transaction.LockTimeout)), opts...)

	employeeRepo := postgres.NewEmployeeRepository(db)
	a := &App{
		Bus:       bus,
		Outbox:    outboxRepo,
		Employees: employee.NewService(employeeRepo, clock, uow),
		Equipment: equipment.NewService(postgres.NewEquipmentRepository(db), clock, uow),
		Teams:     team.NewService(postgres.NewTeamRepository(db), clock, uow),
		Leave: leave.NewService(
			postgres.NewLeaveRequestRepository(db),
			postgres.NewLeaveBalanceRepository(db),
			postgres.NewLeaveAccrualRepository(db),
			employeeRepo,
			clock,
			uow,
			leave.WithLogger(logger),
			leave.WithCancellationWindow(cfg.Leave.CancellationWindow),
		),
	}

	listener.Register(bus,
		listener.NewOffboarding(a.Teams, a.Equipment, logger),
		listener.NewTeamCapacity(a.Teams, logger),
		listener.NewAudit(logger),
	)

	return a
}
