package repository

import (
	"context"
	"fmt"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
)

// producer is the subset of *pkg/kafka.Producer used by the publisher.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaSnapshotPublisher publishes snapshot events keyed by zip code, so
// events for one zip stay ordered within a partition.
type KafkaSnapshotPublisher struct {
	producer producer
	topic    string
}

func NewKafkaSnapshotPublisher(p producer, topic string) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: p, topic: topic}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, event *models.SnapshotEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(event.Snapshot.ZipCode), event); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", event.Snapshot.ZipCode, err)
	}
	return nil
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopSink drops every event.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, *models.SnapshotEvent) error { return nil }
func (NoopSink) Close() error                                        { return nil }

var (
	_ domrepo.SnapshotStore   = (*PostgresSnapshotStore)(nil)
	_ domrepo.SnapshotStore   = (*CacheSnapshotStore)(nil)
	_ domrepo.SnapshotSink    = (*KafkaSnapshotPublisher)(nil)
	_ domrepo.SnapshotSink    = (*ClickHouseSnapshotHistory)(nil)
	_ domrepo.SnapshotHistory = (*ClickHouseSnapshotHistory)(nil)
	_ domrepo.SnapshotSink    = NoopSink{}
)
