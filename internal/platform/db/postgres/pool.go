package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/config"
	"go.uber.org/zap"
)

const applicationName = "workforce-lifecycle"

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// 日付列を UTC のまま扱うため、セッションのタイムゾーンを UTC に固定します。
func BuildPoolConfig(cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	runtime := poolCfg.ConnConfig.RuntimeParams
	runtime["timezone"] = "UTC"
	if _, ok := runtime["application_name"]; !ok {
		runtime["application_name"] = applicationName
	}

	if logger != nil && cfg.SlowQueryThreshold > 0 {
		poolCfg.ConnConfig.Tracer = newSlowQueryTracer(logger, cfg.SlowQueryThreshold)
	}

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。logger が nil の場合はクエリを記録しません。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}
