package messaging

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/pkg/models"
)

func TestNewFeedbackPublisher(t *testing.T) {
	logger := logrus.New()

	t.Run("NilWithoutBrokers", func(t *testing.T) {
		cfg := &config.Config{}
		assert.Nil(t, NewFeedbackPublisher(cfg, logger))
	})

	t.Run("ConfiguredWriter", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Kafka.Brokers = []string{"localhost:9092"}
		cfg.Kafka.Topics.Feedback = "reco.feedback"

		publisher := NewFeedbackPublisher(cfg, logger)
		require.NotNil(t, publisher)
		defer publisher.Close()

		assert.Equal(t, "reco.feedback", publisher.writer.Topic)
		assert.IsType(t, &kafka.Hash{}, publisher.writer.Balancer)
		assert.Equal(t, kafka.RequireOne, publisher.writer.RequiredAcks)
	})
}

func TestBuildMessage(t *testing.T) {
	event := models.Event{
		ID:        uuid.New(),
		UserID:    "user-1",
		Kind:      models.EventRecoClicked,
		Payload:   models.MustPayload(models.RecoClickedPayload{Item: "mag-b6"}),
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	message, err := buildMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("user-1"), message.Key)
	assert.Contains(t, string(message.Value), `"kind":"reco_clicked"`)
	assert.Contains(t, string(message.Value), `"mag-b6"`)

	headers := make(map[string]string, len(message.Headers))
	for _, header := range message.Headers {
		headers[header.Key] = string(header.Value)
	}
	assert.Equal(t, event.ID.String(), headers["event_id"])
	assert.Equal(t, "reco_clicked", headers["kind"])
	assert.Equal(t, "2025-03-01T12:00:00Z", headers["timestamp"])
}
