package services

//go:generate mockgen -destination=events_mock.go -package=services . KafkaWriter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/sbilibin2017/fluxio-api/internal/logger"
	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// UserEventPublisher publishes account events to Kafka.
type UserEventPublisher struct {
	kafkaWriter KafkaWriter
}

// NewUserEventPublisher creates a publisher. A nil writer disables publishing.
func NewUserEventPublisher(kafkaWriter KafkaWriter) *UserEventPublisher {
	return &UserEventPublisher{kafkaWriter: kafkaWriter}
}

// Publish hands the event, keyed by user ID, to the writer. With an async
// writer delivery is reported later by the writer's completion callback.
// Failures are logged, not returned.
func (p *UserEventPublisher) Publish(ctx context.Context, event models.UserEvent) {
	if p.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "event_id", event.EventID, "type", event.Type)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal user event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish user event to Kafka", "event_id", event.EventID, "type", event.Type, "error", err)
		return
	}
	logger.Log.Infow("User event queued for Kafka", "event_id", event.EventID, "type", event.Type, "user_id", event.UserID)
}

// Close closes the underlying writer, if any.
func (p *UserEventPublisher) Close() error {
	if p.kafkaWriter == nil {
		return nil
	}
	return p.kafkaWriter.Close()
}
