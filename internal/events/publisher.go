// Package events publishes order lifecycle events to Kafka.
//
// The publisher is a best-effort side channel: a broker outage is logged and
// dropped, never surfaced to the placement path. Consumers that need
// exactly-once delivery must not be built on this topic.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/livekart/orderflow/internal/core/domain"
)

const publishTimeout = 2 * time.Second

// orderPlacedEvent is the wire shape of an order.placed message.
type orderPlacedEvent struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount string    `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	Status      string    `json:"status"`
	PlacedAt    time.Time `json:"placed_at"`
}

// Publisher writes order events to a Kafka topic, keyed by order id.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// OrderPlaced emits an order.placed event. Failures are logged, not returned:
// the order is already committed and a notification must never undo that.
func (p *Publisher) OrderPlaced(ctx context.Context, o *domain.Order) {
	payload, err := json.Marshal(orderPlacedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount.StringFixed(2),
		ItemCount:   len(o.Items),
		Status:      string(o.Status),
		PlacedAt:    o.CreatedAt,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode order event", "order_id", o.ID, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(o.ID),
		Value: payload,
	})
	if err != nil {
		slog.WarnContext(ctx, "dropping order event, broker write failed",
			"order_id", o.ID, "error", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
