package shared

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// EventOutbox はトランザクション内でイベントを永続化します。
type EventOutbox interface {
	Append(ctx context.Context, events []Event) error
}

// EventDispatcher はコミット後に解放されたイベントをリスナーへ配送します。
// 配送の失敗はコミット済みの状態に影響しません。
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []Event)
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const defaultMaxAttempts = 3

// UnitOfWork は 1 ユースケース分の「読み込み・変更・保存・イベント解放」を 1 トランザクションで実行します。
type UnitOfWork struct {
	tx          TransactionManager
	outbox      EventOutbox
	dispatcher  EventDispatcher
	maxAttempts int
	logger      *zap.Logger
}

// UnitOfWorkOption は UnitOfWork の設定を変更します。
type UnitOfWorkOption func(*UnitOfWork)

// WithOutbox はトランザクション内でイベントを書き込む outbox を設定します。
func WithOutbox(outbox EventOutbox) UnitOfWorkOption {
	return func(u *UnitOfWork) { u.outbox = outbox }
}

// WithDispatcher はコミット後の配送先を設定します。
func WithDispatcher(dispatcher EventDispatcher) UnitOfWorkOption {
	return func(u *UnitOfWork) { u.dispatcher = dispatcher }
}

// WithMaxAttempts は ErrConflict 発生時の最大試行回数を設定します。
func WithMaxAttempts(n int) UnitOfWorkOption {
	return func(u *UnitOfWork) {
		if n > 0 {
			u.maxAttempts = n
		}
	}
}

// WithLogger は競合による再試行を記録するロガーを設定します。
func WithLogger(logger *zap.Logger) UnitOfWorkOption {
	return func(u *UnitOfWork) {
		if logger != nil {
			u.logger = logger.Named("uow")
		}
	}
}

// NewUnitOfWork は UnitOfWork を生成します。tx が nil の場合はトランザクションなしで実行します。
func NewUnitOfWork(tx TransactionManager, opts ...UnitOfWorkOption) *UnitOfWork {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	u := &UnitOfWork{tx: tx, maxAttempts: defaultMaxAttempts, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Do は fn を読み書きトランザクション内で実行します。
// fn は集約から解放したイベントを返し、それらは同じトランザクションで outbox へ書き込まれ、
// コミット成功後に dispatcher へ渡されます。書き込み競合時は fn 全体を再実行します。
func (u *UnitOfWork) Do(ctx context.Context, fn func(context.Context) ([]Event, error)) error {
	if fn == nil {
		return fmt.Errorf("unit of work: function is required")
	}

	var err error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		var released []Event
		err = u.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			events, fnErr := fn(txCtx)
			if fnErr != nil {
				return fnErr
			}
			if u.outbox != nil && len(events) > 0 {
				if err := u.outbox.Append(txCtx, events); err != nil {
					return fmt.Errorf("unit of work: append outbox: %w", err)
				}
			}
			released = events
			return nil
		})
		if err == nil {
			if u.dispatcher != nil && len(released) > 0 {
				u.dispatcher.Dispatch(ctx, released)
			}
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(err, ctxErr)
		}
		if attempt < u.maxAttempts {
			u.logger.Debug("unit of work conflict, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", u.maxAttempts),
				zap.Error(err),
			)
		}
	}
	return err
}

// Read は fn を読み取り専用トランザクション内で実行します。
func (u *UnitOfWork) Read(ctx context.Context, fn func(context.Context) error) error {
	return u.tx.WithinReadOnly(ctx, fn)
}
