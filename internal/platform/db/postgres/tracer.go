package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type queryStartKey struct{}

type queryStart struct {
	sql   string
	begin time.Time
}

// slowQueryTracer は threshold を超えたクエリと失敗したクエリを記録します。
type slowQueryTracer struct {
	logger    *zap.Logger
	threshold time.Duration
	now       func() time.Time
}

func newSlowQueryTracer(logger *zap.Logger, threshold time.Duration) *slowQueryTracer {
	return &slowQueryTracer{logger: logger.Named("postgres"), threshold: threshold, now: time.Now}
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, begin: t.now()})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.begin)

	switch {
	case data.Err != nil:
		t.logger.Debug("query failed", zap.String("sql", start.sql), zap.Duration("elapsed", elapsed), zap.Error(data.Err))
	case elapsed >= t.threshold:
		t.logger.Warn("slow query",
			zap.String("sql", start.sql),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows_affected", data.CommandTag.RowsAffected()),
		)
	}
}
