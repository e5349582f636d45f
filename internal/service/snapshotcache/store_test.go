package snapshotcache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"FinDash/internal/domain/models"
	"FinDash/internal/repository"
	"FinDash/pkg/cache"
	applogger "FinDash/pkg/logger"
	"FinDash/pkg/metrics"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore(t *testing.T, clk *clock) *Store {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return New(repository.NewCacheSnapshotStore(mc, 0), applogger.Nop(), metrics.Noop{}, WithClock(clk.now))
}

func snapshot() models.MarketSnapshot {
	return models.MarketSnapshot{
		ZipCode: "78701", City: "Austin", State: "TX",
		MedianPrice: 450000, PriceChangePercent: 1.11, SalesChange: 25,
		RentalYield: 4.8, OccupancyRate: 96.2, RentDemandScore: 98,
		MedianPriceLabel: "$450K",
	}
}

func TestPutTwiceThenGet(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newStore(t, clk)
	ctx := context.Background()

	in := snapshot()
	s.Put(ctx, in)
	s.Put(ctx, in)

	got := s.Get(ctx, in.ZipCode)
	if got == nil || *got != in {
		t.Fatalf("expected %+v, got %+v", in, got)
	}
}

func TestGetFillsMissingPriceLabel(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newStore(t, clk)
	ctx := context.Background()

	in := snapshot()
	in.MedianPriceLabel = ""
	s.Put(ctx, in)

	got := s.Get(ctx, in.ZipCode)
	if got == nil || got.MedianPriceLabel != "$450K" {
		t.Fatalf("expected derived label, got %+v", got)
	}
}

func TestExpiry(t *testing.T) {
	cases := []struct {
		name string
		age  time.Duration
		hit  bool
	}{
		{"one hour old", time.Hour, true},
		{"exactly retention", 24 * time.Hour, true},
		{"twenty five hours old", 25 * time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
			s := newStore(t, clk)
			s.Put(context.Background(), snapshot())

			clk.t = clk.t.Add(tc.age)
			got := s.Get(context.Background(), "78701")
			if (got != nil) != tc.hit {
				t.Fatalf("hit=%v, want %v", got != nil, tc.hit)
			}
		})
	}
}

func TestExpiredEntryIsKept(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newStore(t, clk)
	s.Put(context.Background(), snapshot())

	clk.t = clk.t.Add(25 * time.Hour)
	if s.Get(context.Background(), "78701") != nil {
		t.Fatal("expected miss")
	}
	clk.t = clk.t.Add(-24 * time.Hour)
	if s.Get(context.Background(), "78701") == nil {
		t.Fatal("expired read must not delete the entry")
	}
}

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) (*models.CacheEntry, error) {
	return nil, errors.New("connection refused")
}
func (brokenBackend) Upsert(context.Context, *models.CacheEntry) error {
	return errors.New("connection refused")
}
func (brokenBackend) Close() error { return nil }

func TestFailOpen(t *testing.T) {
	var buf bytes.Buffer
	s := New(brokenBackend{}, applogger.NewWriter(&buf), metrics.Noop{})
	ctx := context.Background()

	if s.Get(ctx, "78701") != nil {
		t.Fatal("read error must be a miss")
	}
	s.Put(ctx, snapshot())
	if !strings.Contains(buf.String(), "snapshot cache write failed") {
		t.Fatalf("expected write failure to be logged, got %q", buf.String())
	}
}

func TestNilBackend(t *testing.T) {
	s := New(nil, applogger.Nop(), metrics.Noop{})
	if s.Enabled() {
		t.Fatal("expected disabled store")
	}
	s.Put(context.Background(), snapshot())
	if s.Get(context.Background(), "78701") != nil {
		t.Fatal("nil backend always misses")
	}
}
