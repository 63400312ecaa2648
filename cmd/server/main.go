package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/workforce-lifecycle/internal/adapters/grpc/handler"
	"github.com/ogurasousui/workforce-lifecycle/internal/adapters/messaging/kafka"
	"github.com/ogurasousui/workforce-lifecycle/internal/app"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/config"
	pg "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/logger"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/outbox"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/scheduler"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database, zl)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	clock := shared.RealClock{}
	a := app.New(dbPool, cfg, zl, clock)

	zl.Info("workforce services ready",
		zap.Bool("outbox_enabled", cfg.Outbox.Enabled),
		zap.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
		zap.Int("transaction_max_attempts", cfg.Transaction.MaxAttempts),
	)

	g, ctx := errgroup.WithContext(ctx)

	grpcServer := server.New(cfg.Server.ListenAddr, zl, grpc.ChainUnaryInterceptor(handler.UnaryErrorInterceptor()))
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return a.Bus.Run(ctx) })

	if cfg.Outbox.Enabled {
		writer, err := kafka.NewWriter(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		publisher := kafka.NewPublisher(writer, cfg.Kafka.TopicPrefix)
		defer func() {
			if err := publisher.Close(); err != nil {
				zl.Warn("close kafka writer failed", zap.Error(err))
			}
		}()

		relay := outbox.NewRelay(a.Outbox, publisher, zl,
			outbox.WithPollInterval(cfg.Outbox.PollInterval),
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
		)
		g.Go(func() error { return relay.Run(ctx) })
	}

	if cfg.Scheduler.Enabled {
		jobs := scheduler.New(a.Leave, clock, scheduler.WithInterval(cfg.Scheduler.Interval), scheduler.WithLogger(zl))
		g.Go(func() error { return jobs.Run(ctx) })
	}

	return g.Wait()
}
