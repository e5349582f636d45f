package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinDash/internal/domain/models"
	pkgch "FinDash/pkg/clickhouse"
	applogger "FinDash/pkg/logger"
)

const historyTable = "realestate_snapshots"

// HistorySchema creates the snapshot history table. ReplacingMergeTree
// collapses redelivered events with the same key.
var HistorySchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
		event_id             String,
		zip_code             LowCardinality(String),
		city                 LowCardinality(String),
		state                LowCardinality(String),
		median_price         Float64,
		price_change         Float64,
		price_change_percent Float64,
		sales_volume         Int32,
		sales_change         Int32,
		sales_change_percent Float64,
		days_on_market       Float64,
		inventory_count      Int32,
		median_rent          Float64,
		rent_change          Float64,
		rent_change_percent  Float64,
		rental_yield         Float64,
		occupancy_rate       Float64,
		rent_demand_score    Int32,
		fetched_at           DateTime64(3, 'UTC'),
		ingested_at          DateTime64(3, 'UTC') DEFAULT now64(3)
	) ENGINE = ReplacingMergeTree(ingested_at)
	PARTITION BY toYYYYMM(fetched_at)
	ORDER BY (zip_code, fetched_at, event_id)`,
}

const historyColumns = 19

// ClickHouseSnapshotHistory appends snapshot events to ClickHouse.
// It is both a SnapshotHistory and a SnapshotSink.
type ClickHouseSnapshotHistory struct {
	db     *sql.DB
	client *pkgch.Client
	l      *applogger.Logger
}

func NewClickHouseSnapshotHistory(client *pkgch.Client, l *applogger.Logger) *ClickHouseSnapshotHistory {
	return &ClickHouseSnapshotHistory{db: client.DB(), client: client, l: l}
}

func (h *ClickHouseSnapshotHistory) Init(ctx context.Context) error {
	return h.client.InitSchema(ctx, HistorySchema)
}

// Publish appends a single event.
func (h *ClickHouseSnapshotHistory) Publish(ctx context.Context, event *models.SnapshotEvent) error {
	return h.Append(ctx, []*models.SnapshotEvent{event})
}

func (h *ClickHouseSnapshotHistory) Append(ctx context.Context, events []*models.SnapshotEvent) error {
	q, args := buildHistoryInsert(events)
	if q == "" {
		return nil
	}
	start := time.Now()
	if _, err := h.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert snapshot history: %w", err)
	}
	if h.l != nil {
		h.l.Debug("clickhouse snapshot history appended",
			applogger.Int("rows", len(args)/historyColumns),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (h *ClickHouseSnapshotHistory) Health(ctx context.Context) error {
	return h.client.Health(ctx)
}

// Close is a no-op; the connection pool is owned by pkg/clickhouse.Client.
func (h *ClickHouseSnapshotHistory) Close() error { return nil }

// buildHistoryInsert renders one multi-row INSERT, skipping events without a zip.
func buildHistoryInsert(events []*models.SnapshotEvent) (string, []interface{}) {
	values := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*historyColumns)
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", historyColumns), ", ") + ")"

	for _, ev := range events {
		if ev == nil || ev.Snapshot.ZipCode == "" {
			continue
		}
		sn := ev.Snapshot
		values = append(values, placeholder)
		args = append(args,
			ev.ID, sn.ZipCode, sn.City, sn.State,
			sn.MedianPrice, sn.PriceChange, sn.PriceChangePercent,
			int32(sn.SalesVolume), int32(sn.SalesChange), sn.SalesChangePercent,
			sn.DaysOnMarket, int32(sn.InventoryCount),
			sn.MedianRent, sn.RentChange, sn.RentChangePercent,
			sn.RentalYield, sn.OccupancyRate, int32(sn.RentDemandScore),
			ev.FetchedAt.UTC(),
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	q := fmt.Sprintf(`INSERT INTO %s (event_id, zip_code, city, state, median_price, price_change,
		price_change_percent, sales_volume, sales_change, sales_change_percent, days_on_market,
		inventory_count, median_rent, rent_change, rent_change_percent, rental_yield,
		occupancy_rate, rent_demand_score, fetched_at) VALUES %s`, historyTable, strings.Join(values, ","))
	return q, args
}
