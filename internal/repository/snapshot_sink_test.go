package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"FinDash/internal/domain/models"
)

type fakeProducer struct {
	topic string
	key   []byte
	value interface{}
	err   error
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

func (p *fakeProducer) Close() error { return nil }

func TestKafkaSnapshotPublisherKeysByZip(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaSnapshotPublisher(fp, "realestate.snapshots")
	ev := &models.SnapshotEvent{ID: "e1", Snapshot: sampleEntry().Snapshot}

	if err := pub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.topic != "realestate.snapshots" || string(fp.key) != "78701" || fp.value != ev {
		t.Fatalf("unexpected publish: %s %s %v", fp.topic, fp.key, fp.value)
	}

	fp.err = errors.New("broker down")
	if err := pub.Publish(context.Background(), ev); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildHistoryInsert(t *testing.T) {
	e := sampleEntry()
	events := []*models.SnapshotEvent{
		{ID: "a", Snapshot: e.Snapshot, FetchedAt: e.FetchedAt},
		nil,
		{ID: "b"},
		{ID: "c", Snapshot: e.Snapshot, FetchedAt: e.FetchedAt.Add(time.Hour)},
	}
	q, args := buildHistoryInsert(events)
	if !strings.HasPrefix(q, "INSERT INTO realestate_snapshots") {
		t.Fatalf("unexpected query: %s", q)
	}
	if got := strings.Count(q, "(?, "); got != 2 {
		t.Fatalf("expected 2 value rows, got %d", got)
	}
	if len(args) != 2*historyColumns || args[0] != "a" || args[historyColumns] != "c" {
		t.Fatalf("unexpected args: %v", args)
	}

	if q, _ := buildHistoryInsert(nil); q != "" {
		t.Fatal("expected empty query for no events")
	}
}
