package di

import (
	"context"
	"errors"
	"testing"

	internalrepo "FinDash/internal/repository"
	"FinDash/pkg/cache"
	"FinDash/pkg/config"
)

type pingingCache struct {
	*cache.MemoryCache
	err error
}

func (p pingingCache) Health(context.Context) error { return p.err }

func TestHealthChecksProbeRedis(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	down := errors.New("connection refused")
	backend := internalrepo.NewCacheSnapshotStore(pingingCache{MemoryCache: mc, err: down}, 0)

	cfg := &config.Config{}
	cfg.Cache.Backend = config.CacheBackendRedis
	checks := healthChecks(cfg, backend, nil, nil)

	check, ok := checks["redis"]
	if !ok {
		t.Fatalf("expected a redis check, got %v", checks)
	}
	if err := check(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestHealthChecksSkipLocalCache(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()

	cfg := &config.Config{}
	cfg.Cache.Backend = config.CacheBackendMemory
	checks := healthChecks(cfg, internalrepo.NewCacheSnapshotStore(mc, 0), nil, nil)
	if len(checks) != 0 {
		t.Fatalf("expected no checks, got %v", checks)
	}
}
