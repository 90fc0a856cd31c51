package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/ocean-current-etl/internal/config"
	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Notifier announces completed artifact sets on a Kafka topic.
// It implements pipeline.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured artifact topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Notifier{writer: w, logger: logger}
}

// Notify publishes one message describing set. Messages are keyed by the
// date directory so repeated runs for a date land on the same partition.
func (n *Notifier) Notify(ctx context.Context, set domain.ArtifactSet) error {
	msg, err := serializeToMessage(set)
	if err != nil {
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish artifact set %s: %w", set.Dir, err)
	}
	n.logger.Debug("artifact set announced", "date", set.Dir, "topic", n.writer.Topic)
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals an ArtifactSet into a Kafka message.
func serializeToMessage(set domain.ArtifactSet) (kafkago.Message, error) {
	data, err := json.Marshal(set)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize artifact set: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(set.Dir),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "date", Value: []byte(set.Date.Format(time.DateOnly))},
			{Key: "file_count", Value: []byte(strconv.Itoa(len(set.Files)))},
		},
	}, nil
}
