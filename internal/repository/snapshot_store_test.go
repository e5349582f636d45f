package repository

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/pkg/cache"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func sampleEntry() *models.CacheEntry {
	return &models.CacheEntry{
		Snapshot: models.MarketSnapshot{
			ZipCode:            "78701",
			City:               "Austin",
			State:              "TX",
			MedianPrice:        450000,
			PriceChange:        5000,
			PriceChangePercent: 1.1111,
			SalesVolume:        120,
			SalesChange:        25,
			SalesChangePercent: 30,
			DaysOnMarket:       22,
			InventoryCount:     300,
			MedianRent:         1800,
			RentChange:         180,
			RentChangePercent:  10,
			RentalYield:        4.8,
			OccupancyRate:      96.5,
			RentDemandScore:    98,
			MedianPriceLabel:   "$450K",
		},
		FetchedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCacheSnapshotStoreRoundTrip(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheSnapshotStore(mc, 0)
	ctx := context.Background()

	if _, err := store.Get(ctx, "78701"); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := sampleEntry()
	if err := store.Upsert(ctx, in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, in); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if mc.Len() != 1 {
		t.Fatalf("expected one logical row, got %d", mc.Len())
	}

	got, err := store.Get(ctx, "78701")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Snapshot != in.Snapshot || !got.FetchedAt.Equal(in.FetchedAt) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeQuerier struct {
	row      fakeRow
	execSQL  string
	execArgs []any
	execErr  error
}

func (q *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return q.row }

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execSQL, q.execArgs = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), q.execErr
}

func TestPostgresSnapshotStoreGet(t *testing.T) {
	ctx := context.Background()

	missing := &PostgresSnapshotStore{db: &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}}
	if _, err := missing.Get(ctx, "00000"); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	broken := &PostgresSnapshotStore{db: &fakeQuerier{row: fakeRow{err: errors.New("conn reset")}}}
	if _, err := broken.Get(ctx, "78701"); err == nil || errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}

	in := sampleEntry()
	q := &fakeQuerier{row: fakeRow{values: upsertArgs(in)}}
	got, err := (&PostgresSnapshotStore{db: q}).Get(ctx, "78701")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Snapshot != in.Snapshot || !got.FetchedAt.Equal(in.FetchedAt) {
		t.Fatalf("scan mismatch: %+v", got)
	}
}

func TestPostgresSnapshotStoreUpsert(t *testing.T) {
	q := &fakeQuerier{}
	s := &PostgresSnapshotStore{db: q}
	in := sampleEntry()

	if err := s.Upsert(context.Background(), in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !strings.Contains(q.execSQL, "ON CONFLICT (zip_code) DO UPDATE") {
		t.Fatal("upsert must replace on zip_code conflict")
	}
	if !strings.Contains(q.execSQL, "median_price_label = EXCLUDED.median_price_label") {
		t.Fatal("upsert must refresh the price label")
	}
	if len(q.execArgs) != 19 || q.execArgs[0] != "78701" || q.execArgs[17] != "$450K" || q.execArgs[18] != in.FetchedAt {
		t.Fatalf("unexpected args: %v", q.execArgs)
	}

	q.execErr = errors.New("deadlock")
	if err := s.Upsert(context.Background(), in); err == nil {
		t.Fatal("expected error")
	}
}

func TestPostgresSnapshotStoreRoundTripKeepsLabel(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{}
	s := &PostgresSnapshotStore{db: q}
	in := sampleEntry()

	if err := s.Upsert(ctx, in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Feed the written row straight back through Scan.
	q.row = fakeRow{values: q.execArgs}
	got, err := s.Get(ctx, in.Snapshot.ZipCode)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Snapshot.MedianPriceLabel != "$450K" {
		t.Fatalf("label = %q", got.Snapshot.MedianPriceLabel)
	}
	if got.Snapshot != in.Snapshot || !got.FetchedAt.Equal(in.FetchedAt) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

type pingingCache struct {
	*cache.MemoryCache
	err error
}

func (p pingingCache) Health(context.Context) error { return p.err }

func TestCacheSnapshotStoreHealth(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := NewCacheSnapshotStore(mc, 0).Health(ctx); err != nil {
		t.Fatalf("memory cache must report healthy, got %v", err)
	}

	down := errors.New("connection refused")
	if err := NewCacheSnapshotStore(pingingCache{MemoryCache: mc, err: down}, 0).Health(ctx); !errors.Is(err, down) {
		t.Fatalf("expected ping error, got %v", err)
	}
}
