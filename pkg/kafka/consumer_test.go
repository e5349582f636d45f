package kafka

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyHandler struct {
	failures int
	calls    int
}

func (h *flakyHandler) Topic() string { return "t" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestConsumer(t *testing.T, retry int) *Consumer {
	t.Helper()
	c, err := NewConsumer(nil,
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retry, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestHandleWithRetryRecovers(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &flakyHandler{failures: 2}
	if err := c.handleWithRetry(context.Background(), h, nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if h.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", h.calls)
	}
}

func TestHandleWithRetryGivesUp(t *testing.T) {
	c := newTestConsumer(t, 1)
	h := &flakyHandler{failures: 10}
	if err := c.handleWithRetry(context.Background(), h, nil); err == nil {
		t.Fatalf("expected error")
	}
	if h.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", h.calls)
	}
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestStartWithoutHandlers(t *testing.T) {
	c := newTestConsumer(t, 0)
	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("expected error without handlers")
	}
}
