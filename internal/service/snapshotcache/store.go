// Package snapshotcache is the time-boxed, fail-open cache of market snapshots.
package snapshotcache

import (
	"context"
	"errors"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/services/features"
	applogger "FinDash/pkg/logger"
)

// DefaultRetention is how long a cache entry stays fresh.
const DefaultRetention = 24 * time.Hour

// Option configures Store.
type Option func(*Store)

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithClock injects the time source used for stamping and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store reads and upserts snapshots by zip code over a SnapshotStore backend.
// Backend errors never reach the caller: a failed get is a miss and a
// failed put is logged. A nil backend is a cache that always misses.
type Store struct {
	backend   domrepo.SnapshotStore
	logger    *applogger.Logger
	metrics   domrepo.Metrics
	retention time.Duration
	now       func() time.Time
}

func New(backend domrepo.SnapshotStore, logger *applogger.Logger, metrics domrepo.Metrics, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		logger:    logger,
		metrics:   metrics,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a backend is configured.
func (s *Store) Enabled() bool { return s.backend != nil }

// Get returns the live snapshot for zipCode or nil.
// Expired entries are reported as absent and left in place.
func (s *Store) Get(ctx context.Context, zipCode string) *models.MarketSnapshot {
	if s.backend == nil {
		return nil
	}
	entry, err := s.backend.Get(ctx, zipCode)
	switch {
	case errors.Is(err, domrepo.ErrNotFound):
		s.metrics.RecordCacheLookup("miss")
		return nil
	case err != nil:
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("snapshot cache read failed, treating as miss",
			applogger.String("zip_code", zipCode),
			applogger.Error(err),
		)
		return nil
	case entry == nil:
		s.metrics.RecordCacheLookup("miss")
		return nil
	}

	if s.now().Sub(entry.FetchedAt) > s.retention {
		s.metrics.RecordCacheLookup("expired")
		s.logger.Debug("snapshot cache entry expired",
			applogger.String("zip_code", zipCode),
			applogger.String("fetched_at", entry.FetchedAt.UTC().Format(time.RFC3339)),
		)
		return nil
	}

	s.metrics.RecordCacheLookup("hit")
	snap := entry.Snapshot
	if snap.MedianPriceLabel == "" {
		// Rows written before the label column existed.
		snap.MedianPriceLabel = features.PriceLabel(snap.MedianPrice)
	}
	return &snap
}

// Put upserts snapshot stamped with the current time and returns that stamp.
func (s *Store) Put(ctx context.Context, snapshot models.MarketSnapshot) time.Time {
	fetchedAt := s.now().UTC()
	if s.backend == nil {
		return fetchedAt
	}
	err := s.backend.Upsert(ctx, &models.CacheEntry{Snapshot: snapshot, FetchedAt: fetchedAt})
	if err != nil {
		s.metrics.RecordCacheWrite("error")
		s.metrics.RecordError("cache_put")
		s.logger.Error("snapshot cache write failed",
			applogger.String("zip_code", snapshot.ZipCode),
			applogger.Error(err),
		)
		return fetchedAt
	}
	s.metrics.RecordCacheWrite("ok")
	return fetchedAt
}
