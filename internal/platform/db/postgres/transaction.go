package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrReadOnlyTransaction は読み取り専用トランザクションの中で書き込みトランザクションを要求したときに返ります。
var ErrReadOnlyTransaction = errors.New("postgres: read-write transaction requested inside a read-only transaction")

type txContextKey struct{}

// txState はコンテキストに載せる実行中トランザクションです。
type txState struct {
	tx       pgx.Tx
	readOnly bool
}

var (
	ReadOnlyOptions  = pgx.TxOptions{AccessMode: pgx.ReadOnly}
	ReadWriteOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadWrite}
)

type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TransactionManager は pgx を用いたトランザクション制御を提供します。
type TransactionManager struct {
	pool        txStarter
	lockTimeout time.Duration
}

// TxOption は TransactionManager の設定を変更します。
type TxOption func(*TransactionManager)

// WithLockTimeout は読み書きトランザクションで行ロックを待つ上限を設定します。
// 上限を超えた待ちは shared.ErrConflict として返り、ユースケースが再試行します。
func WithLockTimeout(d time.Duration) TxOption {
	return func(m *TransactionManager) {
		if d > 0 {
			m.lockTimeout = d
		}
	}
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(pool txStarter, opts ...TxOption) *TransactionManager {
	if pool == nil {
		return nil
	}
	m := &TransactionManager{pool: pool}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithinReadOnly は読み取り専用トランザクションを開始し、fn を実行します。
// 既にトランザクション内であればそれを再利用します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	if _, ok := stateFromContext(ctx); ok {
		return fn(ctx)
	}
	return m.within(ctx, ReadOnlyOptions, fn)
}

// WithinReadWrite は RepeatableRead の読み書きトランザクションを開始し、fn を実行します。
// 直列化失敗・デッドロック・ロック待ちタイムアウトは shared.ErrConflict として返ります。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	if state, ok := stateFromContext(ctx); ok {
		if state.readOnly {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}
	return m.within(ctx, ReadWriteOptions, fn)
}

func (m *TransactionManager) within(ctx context.Context, opts pgx.TxOptions, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("postgres: transaction function is required")
	}

	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return TranslateConflict(fmt.Errorf("postgres: begin tx: %w", err))
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	readOnly := opts.AccessMode == pgx.ReadOnly
	if !readOnly && m.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", m.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("postgres: set lock_timeout: %w", err)
		}
	}

	if err := fn(contextWithState(ctx, txState{tx: tx, readOnly: readOnly})); err != nil {
		err = TranslateConflict(err)
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if !errors.Is(err, pgx.ErrTxClosed) {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				return errors.Join(fmt.Errorf("postgres: commit: %w", err), fmt.Errorf("postgres: rollback after commit failure: %w", rbErr))
			}
		}
		return TranslateConflict(fmt.Errorf("postgres: commit: %w", err))
	}

	committed = true
	return nil
}

func contextWithState(ctx context.Context, state txState) context.Context {
	return context.WithValue(ctx, txContextKey{}, state)
}

func stateFromContext(ctx context.Context) (txState, bool) {
	if ctx == nil {
		return txState{}, false
	}
	state, ok := ctx.Value(txContextKey{}).(txState)
	return state, ok
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	state, ok := stateFromContext(ctx)
	return state.tx, ok
}

// QueryerFromContext はコンテキスト内にトランザクションが存在すればそれを返し、存在しなければ fallback を返します。
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// Queryer は pgx.Tx および pgxpool.Pool と互換性のあるクエリ実行インターフェースです。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
