package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	pgdb "github.com/ogurasousui/workforce-lifecycle/internal/platform/db/postgres"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/outbox"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"

	maxOutboxRetries = 10
)

// OutboxRepository はドメインイベントの transactional outbox です。
type OutboxRepository struct {
	pool pgdb.Queryer
}

func NewOutboxRepository(pool pgdb.Queryer) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Append はイベントを JSON にして outbox へ書き込みます。ctx にトランザクションがあればそれに参加します。
func (r *OutboxRepository) Append(ctx context.Context, events []shared.Event) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("postgres: encode event %s: %w", ev.EventType(), err)
		}
		if _, err := exec.Exec(ctx, `
            INSERT INTO event_outbox (id, event_type, aggregate_type, aggregate_id, payload, occurred_at, status)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `,
			ev.EventID(),
			ev.EventType(),
			ev.AggregateType(),
			ev.AggregateID(),
			payload,
			ev.OccurredAt().UTC(),
			OutboxStatusPending,
		); err != nil {
			return pgdb.TranslateConflict(err)
		}
	}
	return nil
}

// ListPending は未送信と再送待ちのメッセージを作成順に返します。
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]outbox.Message, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, event_type, aggregate_type, aggregate_id, payload, occurred_at, retry_count
          FROM event_outbox
         WHERE status IN ($1, $2)
           AND retry_count < $3
           AND (next_retry_at IS NULL OR next_retry_at <= NOW())
         ORDER BY created_at
         LIMIT $4
    `, OutboxStatusPending, OutboxStatusFailed, maxOutboxRetries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]outbox.Message, 0, limit)
	for rows.Next() {
		var m outbox.Message
		if err := rows.Scan(&m.ID, &m.EventType, &m.AggregateType, &m.AggregateID, &m.Payload, &m.OccurredAt, &m.RetryCount); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE event_outbox
           SET status = $2,
               processed_at = NOW(),
               error_message = NULL
         WHERE id = $1
    `, id, OutboxStatusSent)
	return err
}

// MarkFailed は再送回数を増やし、回数に比例した待ち時間 (上限 10 倍) の後に再送対象へ戻します。
func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE event_outbox
           SET status = $2,
               retry_count = retry_count + 1,
               error_message = LEFT($3, 500),
               next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds')
         WHERE id = $1
    `, id, OutboxStatusFailed, reason)
	return err
}
