package usecase

import (
	"context"

	"DragonVeins/internal/domain/models"
	pkgkafka "DragonVeins/pkg/kafka"
)

// KafkaEventSink publishes activity events to a Kafka topic, best-effort.
// Delivery mirrors the feed's semantics: a dropped event is logged by the
// caller and forgotten.
type KafkaEventSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventSink creates a sink over an existing producer.
func NewKafkaEventSink(producer *pkgkafka.Producer, topic string) *KafkaEventSink {
	return &KafkaEventSink{producer: producer, topic: topic}
}

// Publish sends one event keyed by symbol, so per-symbol ordering holds.
func (s *KafkaEventSink) Publish(ctx context.Context, ev models.ActivityEvent) error {
	return s.producer.Publish(ctx, s.topic, []byte(ev.Symbol), ev)
}

// Close closes the underlying producer.
func (s *KafkaEventSink) Close() error {
	return s.producer.Close()
}
