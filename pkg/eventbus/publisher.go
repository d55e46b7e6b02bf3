package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/segmentio/kafka-go"
)

// Publisher writes giveaway events to a Kafka topic. Messages are keyed by giveaway
// id so every event of one giveaway lands on the same partition, in order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	})
}

// NewPublisherWithWriter wraps an already configured writer.
func NewPublisherWithWriter(writer *kafka.Writer) *Publisher {
	return &Publisher{writer: writer}
}

// Publish sends one event.
func (p *Publisher) Publish(ctx context.Context, event *models.GiveawayEvent) error {
	msg, err := eventMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write giveaway event to kafka: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func eventMessage(event *models.GiveawayEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal giveaway event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.GiveawayID.Hex()),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}
