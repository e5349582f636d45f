package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/pkg/cache"
)

const snapshotKeyPrefix = "realestate:snapshot"

// CacheSnapshotStore keeps cache entries in a key-value cache (redis or memory).
// Entries carry their own fetchedAt; ttl only bounds storage, freshness is
// decided by the reader.
type CacheSnapshotStore struct {
	c   cache.Service
	ttl time.Duration
}

// NewCacheSnapshotStore wraps c. A zero ttl keeps entries until overwritten.
func NewCacheSnapshotStore(c cache.Service, ttl time.Duration) *CacheSnapshotStore {
	return &CacheSnapshotStore{c: c, ttl: ttl}
}

func (s *CacheSnapshotStore) Get(ctx context.Context, zipCode string) (*models.CacheEntry, error) {
	entry, err := cache.GetTyped[models.CacheEntry](ctx, s.c, snapshotKey(zipCode))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", zipCode, err)
	}
	return &entry, nil
}

func (s *CacheSnapshotStore) Upsert(ctx context.Context, entry *models.CacheEntry) error {
	if err := s.c.Set(ctx, snapshotKey(entry.Snapshot.ZipCode), entry, s.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", entry.Snapshot.ZipCode, err)
	}
	return nil
}

// Health pings the underlying cache when it is remote. Local caches are
// always healthy.
func (s *CacheSnapshotStore) Health(ctx context.Context) error {
	if p, ok := s.c.(interface{ Health(context.Context) error }); ok {
		return p.Health(ctx)
	}
	return nil
}

func (s *CacheSnapshotStore) Close() error { return s.c.Close() }

func snapshotKey(zipCode string) string {
	return cache.GenerateKey(snapshotKeyPrefix, zipCode)
}
