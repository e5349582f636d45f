package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	pkgkafka "FinDash/pkg/kafka"
)

// SnapshotEventsHandler consumes snapshot events from Kafka and appends
// them to the history store.
type SnapshotEventsHandler struct {
	topic   string
	history domrepo.SnapshotHistory
	metrics domrepo.Metrics
}

func NewSnapshotEventsHandler(topic string, history domrepo.SnapshotHistory, metrics domrepo.Metrics) *SnapshotEventsHandler {
	return &SnapshotEventsHandler{topic: topic, history: history, metrics: metrics}
}

func (h *SnapshotEventsHandler) Topic() string { return h.topic }

// Handle decodes one event. Malformed payloads are dropped without retry;
// storage errors are returned so the consumer retries them.
func (h *SnapshotEventsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.SnapshotEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return nil
	}
	if ev.Snapshot.ZipCode == "" || ev.ID == "" {
		h.metrics.RecordError("consumer_invalid_event")
		return nil
	}
	if !ev.FetchedAt.IsZero() {
		h.metrics.RecordLatency("snapshot_event_lag", time.Since(ev.FetchedAt).Seconds())
	}

	start := time.Now()
	err := h.history.Append(ctx, []*models.SnapshotEvent{&ev})
	h.metrics.RecordLatency("history_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return fmt.Errorf("append snapshot %s: %w", ev.ID, err)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*SnapshotEventsHandler)(nil)
