package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/app"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/config"
	pg "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/logger"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	year       int
	month      int
	rollover   int
	complete   bool
}

func main() {
	now := time.Now().UTC()
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.IntVar(&opts.year, "year", now.Year(), "accrual year")
	flag.IntVar(&opts.month, "month", int(now.Month()), "accrual month (1-12); 0 skips monthly accrual")
	flag.IntVar(&opts.rollover, "rollover", 0, "close the given year and carry balances into the next one before accruing")
	flag.BoolVar(&opts.complete, "complete", false, "complete approved leave whose end date has passed")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(ctx, cfg, opts, zl); err != nil {
		zl.Error("accrual run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, zl *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database, zl)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	a := app.New(dbPool, cfg, zl, shared.RealClock{})

	busCtx, stopBus := context.WithCancel(context.Background())
	busDone := make(chan struct{})
	go func() {
		defer close(busDone)
		_ = a.Bus.Run(busCtx)
	}()
	defer func() {
		stopBus()
		<-busDone
	}()

	if opts.rollover != 0 {
		summary, err := a.Leave.RolloverForActiveEmployees(ctx, opts.rollover)
		if err != nil {
			return fmt.Errorf("rollover %d: %w", opts.rollover, err)
		}
		zl.Info("rollover finished", zap.Int("closing_year", opts.rollover), zap.Int("applied", summary.Applied), zap.Int("skipped", summary.Skipped))
	}

	if opts.month != 0 {
		summary, err := a.Leave.AccrueForActiveEmployees(ctx, opts.year, time.Month(opts.month))
		if err != nil {
			return fmt.Errorf("accrue %s: %w", summary.Period, err)
		}
		zl.Info("accrual finished", zap.String("period", summary.Period), zap.Int("applied", summary.Applied), zap.Int("skipped", summary.Skipped))
	}

	if opts.complete {
		completed, err := a.Leave.CompleteElapsed(ctx)
		if err != nil {
			return fmt.Errorf("complete elapsed leave: %w", err)
		}
		zl.Info("leave completion finished", zap.Int("completed", completed))
	}

	return nil
}
