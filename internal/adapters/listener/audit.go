package listener

import (
	"context"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"go.uber.org/zap"
)

// Audit は全ドメインイベントを構造化ログに出力します。
type Audit struct {
	logger *zap.Logger
}

func NewAudit(logger *zap.Logger) *Audit {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Audit{logger: logger.Named("listener.audit")}
}

func (a *Audit) Name() string { return "audit" }

func (a *Audit) Handle(_ context.Context, event shared.Event) error {
	a.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}
