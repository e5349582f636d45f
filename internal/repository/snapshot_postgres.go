package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	applogger "FinDash/pkg/logger"
	pkgpg "FinDash/pkg/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SnapshotSchema creates the cache table. zip_code is the primary key so
// an upsert always leaves one row per zip.
var SnapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS real_estate_cache (
		zip_code             TEXT PRIMARY KEY,
		city                 TEXT NOT NULL,
		state                TEXT NOT NULL,
		median_price         DOUBLE PRECISION NOT NULL DEFAULT 0,
		price_change         DOUBLE PRECISION NOT NULL DEFAULT 0,
		price_change_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		sales_volume         INTEGER NOT NULL DEFAULT 0,
		sales_change         INTEGER NOT NULL DEFAULT 0,
		sales_change_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		days_on_market       DOUBLE PRECISION NOT NULL DEFAULT 0,
		inventory_count      INTEGER NOT NULL DEFAULT 0,
		median_rent          DOUBLE PRECISION NOT NULL DEFAULT 0,
		rent_change          DOUBLE PRECISION NOT NULL DEFAULT 0,
		rent_change_percent  DOUBLE PRECISION NOT NULL DEFAULT 0,
		rental_yield         DOUBLE PRECISION NOT NULL DEFAULT 0,
		occupancy_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
		rent_demand_score    INTEGER NOT NULL DEFAULT 0,
		median_price_label   TEXT NOT NULL DEFAULT '',
		fetched_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE real_estate_cache ADD COLUMN IF NOT EXISTS median_price_label TEXT NOT NULL DEFAULT ''`,
}

const (
	selectSnapshotSQL = `
		SELECT zip_code, city, state, median_price, price_change, price_change_percent,
		       sales_volume, sales_change, sales_change_percent, days_on_market, inventory_count,
		       median_rent, rent_change, rent_change_percent, rental_yield, occupancy_rate,
		       rent_demand_score, median_price_label, fetched_at
		FROM real_estate_cache
		WHERE zip_code = $1`

	upsertSnapshotSQL = `
		INSERT INTO real_estate_cache (
			zip_code, city, state, median_price, price_change, price_change_percent,
			sales_volume, sales_change, sales_change_percent, days_on_market, inventory_count,
			median_rent, rent_change, rent_change_percent, rental_yield, occupancy_rate,
			rent_demand_score, median_price_label, fetched_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
		ON CONFLICT (zip_code) DO UPDATE SET
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			median_price = EXCLUDED.median_price,
			price_change = EXCLUDED.price_change,
			price_change_percent = EXCLUDED.price_change_percent,
			sales_volume = EXCLUDED.sales_volume,
			sales_change = EXCLUDED.sales_change,
			sales_change_percent = EXCLUDED.sales_change_percent,
			days_on_market = EXCLUDED.days_on_market,
			inventory_count = EXCLUDED.inventory_count,
			median_rent = EXCLUDED.median_rent,
			rent_change = EXCLUDED.rent_change,
			rent_change_percent = EXCLUDED.rent_change_percent,
			rental_yield = EXCLUDED.rental_yield,
			occupancy_rate = EXCLUDED.occupancy_rate,
			rent_demand_score = EXCLUDED.rent_demand_score,
			median_price_label = EXCLUDED.median_price_label,
			fetched_at = EXCLUDED.fetched_at,
			updated_at = EXCLUDED.updated_at`
)

// pgQuerier is the subset of *pgxpool.Pool used by the store.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSnapshotStore keeps cache entries in the real_estate_cache table.
type PostgresSnapshotStore struct {
	db     pgQuerier
	client *pkgpg.Client
	l      *applogger.Logger
}

func NewPostgresSnapshotStore(client *pkgpg.Client, l *applogger.Logger) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: client.Pool(), client: client, l: l}
}

// Init creates the table if missing.
func (s *PostgresSnapshotStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, SnapshotSchema)
}

func (s *PostgresSnapshotStore) Get(ctx context.Context, zipCode string) (*models.CacheEntry, error) {
	var (
		e  models.CacheEntry
		sn = &e.Snapshot
	)
	err := s.db.QueryRow(ctx, selectSnapshotSQL, zipCode).Scan(
		&sn.ZipCode, &sn.City, &sn.State, &sn.MedianPrice, &sn.PriceChange, &sn.PriceChangePercent,
		&sn.SalesVolume, &sn.SalesChange, &sn.SalesChangePercent, &sn.DaysOnMarket, &sn.InventoryCount,
		&sn.MedianRent, &sn.RentChange, &sn.RentChangePercent, &sn.RentalYield, &sn.OccupancyRate,
		&sn.RentDemandScore, &sn.MedianPriceLabel, &e.FetchedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot %s: %w", zipCode, err)
	}
	return &e, nil
}

func (s *PostgresSnapshotStore) Upsert(ctx context.Context, entry *models.CacheEntry) error {
	start := time.Now()
	_, err := s.db.Exec(ctx, upsertSnapshotSQL, upsertArgs(entry)...)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", entry.Snapshot.ZipCode, err)
	}
	if s.l != nil {
		s.l.Debug("postgres snapshot upserted",
			applogger.String("zip_code", entry.Snapshot.ZipCode),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// Close is a no-op; the pool is owned by pkg/postgres.Client.
func (s *PostgresSnapshotStore) Close() error { return nil }

func upsertArgs(e *models.CacheEntry) []any {
	sn := e.Snapshot
	return []any{
		sn.ZipCode, sn.City, sn.State, sn.MedianPrice, sn.PriceChange, sn.PriceChangePercent,
		sn.SalesVolume, sn.SalesChange, sn.SalesChangePercent, sn.DaysOnMarket, sn.InventoryCount,
		sn.MedianRent, sn.RentChange, sn.RentChangePercent, sn.RentalYield, sn.OccupancyRate,
		sn.RentDemandScore, sn.MedianPriceLabel, e.FetchedAt,
	}
}
