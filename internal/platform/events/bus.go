package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"go.uber.org/zap"
)

// AllEvents を購読種別に指定すると全イベントを受け取ります。
const AllEvents = "*"

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultMaxAttempts = 3
)

var defaultRetryBackoff = []time.Duration{time.Second, 2 * time.Second, 5 * time.Second}

// Handler はイベント 1 件を処理します。エラーを返すと再試行されます。
type Handler = func(ctx context.Context, event shared.Event) error

type subscription struct {
	listener  string
	eventType string
	handler   Handler
}

type delivery struct {
	sub   subscription
	event shared.Event
}

// Bus はコミット後のイベントをワーカーでリスナーへ非同期に配送するプロセス内バスです。
// 配送は at-least-once で、リスナーの失敗は発行元へ返りません。
type Bus struct {
	logger      *zap.Logger
	workers     int
	queue       chan delivery
	maxAttempts int
	backoff     []time.Duration

	mu   sync.RWMutex
	subs []subscription
}

// Option は Bus の設定を変更します。
type Option func(*Bus)

func WithWorkers(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan delivery, n)
		}
	}
}

// WithRetry は 1 配送あたりの最大試行回数と再試行前の待ち時間を設定します。
// backoff の要素数より試行回数が多い場合は最後の待ち時間を使い続けます。
func WithRetry(maxAttempts int, backoff ...time.Duration) Option {
	return func(b *Bus) {
		if maxAttempts > 0 {
			b.maxAttempts = maxAttempts
		}
		if backoff != nil {
			b.backoff = append([]time.Duration(nil), backoff...)
		}
	}
}

// NewBus は Bus を生成します。logger が nil の場合は出力しません。
func NewBus(logger *zap.Logger, opts ...Option) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bus{
		logger:      logger.Named("events.bus"),
		workers:     defaultWorkers,
		queue:       make(chan delivery, defaultQueueSize),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe は eventType のイベントを handler へ配送するよう登録します。
func (b *Bus) Subscribe(listener, eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{listener: listener, eventType: eventType, handler: handler})
}

// Dispatch は events を購読者ごとの配送としてキューへ積みます。
// キューが満杯の場合は呼び出し元のゴルーチンで配送します。
func (b *Bus) Dispatch(ctx context.Context, events []shared.Event) {
	for _, ev := range events {
		for _, sub := range b.matching(ev.EventType()) {
			d := delivery{sub: sub, event: ev}
			select {
			case b.queue <- d:
			default:
				b.logger.Warn("event queue is full, delivering inline",
					zap.String("listener", sub.listener),
					zap.String("event_type", ev.EventType()),
				)
				b.deliver(context.WithoutCancel(ctx), d)
			}
		}
	}
}

// Run はワーカーを起動し、ctx がキャンセルされるまで配送を続けます。
func (b *Bus) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for range b.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d := <-b.queue:
					b.deliver(ctx, d)
				}
			}
		}()
	}

	b.logger.Info("event bus started", zap.Int("workers", b.workers))
	<-ctx.Done()
	wg.Wait()

	if pending := len(b.queue); pending > 0 {
		b.logger.Warn("event bus stopped with undelivered events", zap.Int("pending", pending))
	}
	return nil
}

func (b *Bus) matching(eventType string) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []subscription
	for _, sub := range b.subs {
		if sub.eventType == eventType || sub.eventType == AllEvents {
			out = append(out, sub)
		}
	}
	return out
}

func (b *Bus) deliver(ctx context.Context, d delivery) {
	fields := []zap.Field{
		zap.String("listener", d.sub.listener),
		zap.String("event_type", d.event.EventType()),
		zap.String("event_id", d.event.EventID()),
		zap.String("aggregate_id", d.event.AggregateID()),
	}

	var err error
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		if err = invoke(ctx, d); err == nil {
			return
		}
		if attempt == b.maxAttempts {
			break
		}
		b.logger.Warn("listener failed, retrying", append(fields, zap.Int("attempt", attempt), zap.Error(err))...)
		if !wait(ctx, b.backoffFor(attempt)) {
			err = fmt.Errorf("%w: %w", err, ctx.Err())
			break
		}
	}
	b.logger.Error("domain event listener failed", append(fields, zap.Error(err))...)
}

func (b *Bus) backoffFor(attempt int) time.Duration {
	if len(b.backoff) == 0 {
		return 0
	}
	return b.backoff[min(attempt, len(b.backoff))-1]
}

func invoke(ctx context.Context, d delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("events: listener %s panicked: %v", d.sub.listener, r)
		}
	}()
	return d.sub.handler(ctx, d.event)
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
