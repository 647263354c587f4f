package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"taxcopilot/internal/database/kafka"
	"taxcopilot/internal/models"
	"taxcopilot/pkg/logger"
)

// StatusEvent is the message published whenever a document changes lifecycle
// status.
type StatusEvent struct {
	DocumentID string                `json:"documentId"`
	Status     models.DocumentStatus `json:"status"`
	ChunkCount *int                  `json:"chunkCount,omitempty"`
	Error      string                `json:"error,omitempty"`
	OccurredAt time.Time             `json:"occurredAt"`
}

// StatusPublisher publishes document status changes to Kafka. Publishing is
// best effort: consumers track progress, the database stays authoritative.
type StatusPublisher struct {
	log    *logger.Logger
	writer *kafkago.Writer
}

// NewStatusPublisher creates a publisher for the configured topic.
func NewStatusPublisher(client *kafka.KafkaClient) *StatusPublisher {
	writer := kafkago.NewWriter(kafkago.WriterConfig{
		Brokers:      client.Config.Brokers,
		Topic:        client.Config.Topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &StatusPublisher{
		log:    logger.New("status-publisher"),
		writer: writer,
	}
}

// Publish sends the event, keyed by document id so per-document ordering is
// preserved. Failures are logged and swallowed.
func (p *StatusPublisher) Publish(ctx context.Context, event StatusEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Warn("failed to marshal status event")
		return
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.DocumentID),
		Value: jsonData,
	})
	if err != nil {
		p.log.WithError(err).Warn(fmt.Sprintf("failed to publish status event for document %s", event.DocumentID))
	}
}

// Close closes the underlying writer.
func (p *StatusPublisher) Close() error {
	return p.writer.Close()
}
