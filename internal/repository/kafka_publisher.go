package repository

import (
	"context"

	"ScreenPull/internal/domain/models"
	pkgkafka "ScreenPull/pkg/kafka"
)

// KafkaEventPublisher emits job events to a Kafka topic, keyed by job id so
// a consumer sees each job's progress in publish order.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a Kafka-backed publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishJobEvent(ctx context.Context, ev *models.JobEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.JobID), ev)
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// NoopEventPublisher discards events. Used when Kafka is disabled.
type NoopEventPublisher struct{}

func NewNoopEventPublisher() *NoopEventPublisher { return &NoopEventPublisher{} }

func (NoopEventPublisher) PublishJobEvent(context.Context, *models.JobEvent) error { return nil }
func (NoopEventPublisher) Close() error                                            { return nil }
