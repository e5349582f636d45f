package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"FinDash/internal/domain/models"
	"FinDash/pkg/metrics"
)

type fakeHistory struct {
	appended []*models.SnapshotEvent
	err      error
}

func (f *fakeHistory) Init(context.Context) error   { return nil }
func (f *fakeHistory) Health(context.Context) error { return nil }
func (f *fakeHistory) Close() error                 { return nil }

func (f *fakeHistory) Append(_ context.Context, evs []*models.SnapshotEvent) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, evs...)
	return nil
}

func TestSnapshotEventsHandler(t *testing.T) {
	hist := &fakeHistory{}
	h := NewSnapshotEventsHandler("realestate.snapshots", hist, metrics.Noop{})
	if h.Topic() != "realestate.snapshots" {
		t.Fatalf("unexpected topic %s", h.Topic())
	}

	b, _ := json.Marshal(models.SnapshotEvent{
		ID:        "5b7c",
		Type:      models.SnapshotEventType,
		Snapshot:  models.MarketSnapshot{ZipCode: "78701", City: "Austin", State: "TX", MedianPrice: 450000},
		FetchedAt: time.Now().Add(-time.Second),
	})
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(hist.appended) != 1 || hist.appended[0].Snapshot.MedianPrice != 450000 {
		t.Fatalf("unexpected appended %+v", hist.appended)
	}

	if err := h.Handle(context.Background(), []byte("{")); err != nil {
		t.Fatal("malformed payloads must not be retried")
	}
	if err := h.Handle(context.Background(), []byte(`{"id":"x"}`)); err != nil || len(hist.appended) != 1 {
		t.Fatal("events without zip must be dropped")
	}

	hist.err = errors.New("clickhouse down")
	if err := h.Handle(context.Background(), b); err == nil {
		t.Fatal("storage errors must be returned for retry")
	}
}
