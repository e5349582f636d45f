package repository

import (
	"context"
	"errors"
	"time"

	"FinDash/internal/domain/models"
)

// ErrNotFound is returned by snapshot stores when no entry exists for a zip.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore is a keyed persistence backend for cache entries.
// Implementations return errors; the fail-open policy lives above them.
type SnapshotStore interface {
	Get(ctx context.Context, zipCode string) (*models.CacheEntry, error)
	Upsert(ctx context.Context, entry *models.CacheEntry) error
	Close() error
}

// RealEstateGateway reads from the real-estate data provider.
// Every method returns nil or empty on failure and never an error.
type RealEstateGateway interface {
	Configured() bool
	MarketTrends(ctx context.Context, city, state string) *models.MarketTrends
	PropertiesForSale(ctx context.Context, city, state string, limit int) []models.Property
	PropertiesForRent(ctx context.Context, city, state string, limit int) []models.Property
	RecentlySold(ctx context.Context, city, state string, limit int) []models.Property
}

// QuoteProvider reads equities and macro data.
type QuoteProvider interface {
	Configured() bool
	Quote(ctx context.Context, symbol string) *models.Quote
	Quotes(ctx context.Context, symbols []string) []models.SymbolQuote
	EarningsCalendar(ctx context.Context, from, to time.Time) []models.Earning
	EconomicCalendar(ctx context.Context) []models.EconomicEvent
}

// CryptoProvider reads crypto market listings.
type CryptoProvider interface {
	Markets(ctx context.Context, perPage int) []models.CoinMarket
}

// SnapshotSink receives every freshly computed snapshot.
type SnapshotSink interface {
	Publish(ctx context.Context, event *models.SnapshotEvent) error
	Close() error
}

// SnapshotHistory appends snapshot events to an analytical store.
type SnapshotHistory interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, events []*models.SnapshotEvent) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordCacheLookup(result string)
	RecordCacheWrite(result string)
	RecordVendorRequest(vendor, endpoint, result string)
	RecordOutcome(status string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
