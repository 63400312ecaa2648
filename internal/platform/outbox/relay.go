package outbox

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultBatchSize    = 50
)

// Message は outbox テーブルの 1 行です。Payload はイベント本体の JSON です。
type Message struct {
	ID            string
	EventType     string
	AggregateType string
	AggregateID   string
	Payload       []byte
	OccurredAt    time.Time
	RetryCount    int
}

// Store は未送信メッセージの取得と送信結果の記録を行います。
type Store interface {
	ListPending(ctx context.Context, limit int) ([]Message, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// Publisher はメッセージを外部のブローカーへ送信します。
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Relay は outbox をポーリングして未送信メッセージを Publisher へ送ります。
type Relay struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
}

type Option func(*Relay)

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// NewRelay は Relay を生成します。logger が nil の場合はログを出力しません。
func NewRelay(store Store, publisher Publisher, logger *zap.Logger, opts ...Option) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Relay{
		store:     store,
		publisher: publisher,
		logger:    logger.Named("outbox.relay"),
		interval:  defaultPollInterval,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run は ctx が終了するまで一定間隔で ProcessOnce を繰り返します。
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", zap.Duration("poll_interval", r.interval), zap.Int("batch_size", r.batchSize))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.ProcessOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("process outbox messages failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce は未送信メッセージを 1 バッチ分送信し、送信できた件数を返します。
// 個々の送信失敗は MarkFailed に記録し、バッチの処理は続けます。
func (r *Relay) ProcessOnce(ctx context.Context) (int, error) {
	messages, err := r.store.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	sent := 0
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := r.publisher.Publish(ctx, msg); err != nil {
			r.logger.Warn("publish outbox message failed",
				zap.String("outbox_id", msg.ID),
				zap.String("event_type", msg.EventType),
				zap.Int("retry_count", msg.RetryCount),
				zap.Error(err),
			)
			if markErr := r.store.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				r.logger.Error("mark outbox failed failed", zap.String("outbox_id", msg.ID), zap.Error(markErr))
			}
			continue
		}

		if err := r.store.MarkSent(ctx, msg.ID); err != nil {
			r.logger.Error("mark outbox sent failed", zap.String("outbox_id", msg.ID), zap.Error(err))
			continue
		}
		sent++
	}

	r.logger.Debug("outbox batch processed", zap.Int("count", len(messages)), zap.Int("sent", sent))
	return sent, nil
}
