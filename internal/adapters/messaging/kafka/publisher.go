package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/platform/outbox"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	defaultTopicPrefix  = "workforce"
	defaultWriteTimeout = 10 * time.Second
)

// MessageWriter は kafka-go の Writer が満たす送信インターフェースです。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher は outbox のメッセージを集約種別ごとのトピックへ送信します。
// トピックは <prefix>.<aggregate_type>、キーは集約 ID で、同一集約のイベント順序がパーティション内で保たれます。
type Publisher struct {
	writer      MessageWriter
	topicPrefix string
}

// NewWriter は brokers へ接続する Writer を生成します。
func NewWriter(brokers []string) (*kafkago.Writer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		WriteTimeout:           defaultWriteTimeout,
		AllowAutoTopicCreation: true,
	}, nil
}

func NewPublisher(writer MessageWriter, topicPrefix string) *Publisher {
	prefix := strings.Trim(strings.TrimSpace(topicPrefix), ".")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &Publisher{writer: writer, topicPrefix: prefix}
}

// Topic は集約種別に対応するトピック名を返します。
func (p *Publisher) Topic(aggregateType string) string {
	return p.topicPrefix + "." + aggregateType
}

func (p *Publisher) Publish(ctx context.Context, msg outbox.Message) error {
	m := kafkago.Message{
		Topic: p.Topic(msg.AggregateType),
		Key:   []byte(msg.AggregateID),
		Value: msg.Payload,
		Time:  msg.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(msg.EventType)},
			{Key: "aggregate_type", Value: []byte(msg.AggregateType)},
			{Key: "event_id", Value: []byte(msg.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, m); err != nil {
		return fmt.Errorf("kafka: publish %s to %s: %w", msg.EventType, m.Topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
