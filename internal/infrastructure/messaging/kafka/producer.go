package kafka

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// Producer publishes scoring-run events.  The scoring service treats
// publish failures as non-fatal; they are logged and the run continues.
type Producer struct {
	writer *kafkago.Writer
	logger logging.Logger
}

// NewProducer constructs a Producer for the configured brokers.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Balancer:     &kafkago.LeastBytes{},
			WriteTimeout: cfg.WriteTimeout,
			// Topics are created by operations tooling; auto-creation in
			// production hides misconfiguration.
			AllowAutoTopicCreation: false,
		},
		logger: logger.Named("kafka"),
	}
}

// Publish serialises event as JSON and writes it to topic, keyed by key for
// per-run ordering.
func (p *Producer) Publish(ctx context.Context, topic, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "failed to marshal event")
	}
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "failed to publish event").
			WithDetail("topic=" + topic)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
