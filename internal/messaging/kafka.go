package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/pkg/models"
)

// FeedbackPublisher fans shown and click events out to Kafka so downstream
// analytics can consume engagement without reading our event log.
type FeedbackPublisher struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// NewFeedbackPublisher returns nil when no brokers are configured; callers
// treat a nil publisher as a no-op.
func NewFeedbackPublisher(cfg *config.Config, logger *logrus.Logger) *FeedbackPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka not configured, feedback publishing disabled")
		return nil
	}

	return &FeedbackPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topics.Feedback,
			Balancer:     &kafka.Hash{}, // Key by user for per-user ordering
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		logger: logger,
	}
}

func (p *FeedbackPublisher) Publish(ctx context.Context, event models.Event) error {
	message, err := buildMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write feedback message: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"kind":     event.Kind,
		"topic":    p.writer.Topic,
	}).Debug("Feedback event published")

	return nil
}

func buildMessage(event models.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal feedback event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "timestamp", Value: []byte(event.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}

func (p *FeedbackPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close feedback writer: %w", err)
	}
	return nil
}
