package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserEventPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	event := models.UserEvent{
		EventID:    "evt-123",
		Type:       models.EventUserRegistered,
		UserID:     42,
		Email:      "john@example.com",
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	ctrl := gomock.NewController(t)
	mockKafka := NewMockKafkaWriter(ctrl)
	p := NewUserEventPublisher(mockKafka)

	mockKafka.EXPECT().WriteMessages(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			assert.Equal(t, "42", string(msgs[0].Key))

			var got models.UserEvent
			require.NoError(t, json.Unmarshal(msgs[0].Value, &got))
			assert.Equal(t, event, got)
			return nil
		})
	p.Publish(ctx, event)

	// publish errors are swallowed
	mockKafka.EXPECT().WriteMessages(ctx, gomock.Any()).Return(errors.New("kafka error"))
	assert.NotPanics(t, func() { p.Publish(ctx, event) })

	mockKafka.EXPECT().Close().Return(nil)
	assert.NoError(t, p.Close())
}

func TestUserEventPublisher_NilWriter(t *testing.T) {
	p := NewUserEventPublisher(nil)
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), models.UserEvent{EventID: "evt"})
	})
	assert.NoError(t, p.Close())
}
