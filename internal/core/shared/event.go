package shared

import (
	"time"

	"github.com/google/uuid"
)

// Event はドメインイベントの共通インターフェースです。
type Event interface {
	EventID() string
	EventType() string
	AggregateType() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventBase は各イベントに埋め込むメタデータです。
type EventBase struct {
	id            string
	eventType     string
	aggregateType string
	aggregateID   string
	occurredAt    time.Time
}

// NewEventBase は一意なイベント ID を採番して EventBase を生成します。
func NewEventBase(eventType, aggregateType, aggregateID string, occurredAt time.Time) EventBase {
	return EventBase{
		id:            uuid.NewString(),
		eventType:     eventType,
		aggregateType: aggregateType,
		aggregateID:   aggregateID,
		occurredAt:    occurredAt.UTC(),
	}
}

func (e EventBase) EventID() string       { return e.id }
func (e EventBase) EventType() string     { return e.eventType }
func (e EventBase) AggregateType() string { return e.aggregateType }
func (e EventBase) AggregateID() string   { return e.aggregateID }
func (e EventBase) OccurredAt() time.Time { return e.occurredAt }
