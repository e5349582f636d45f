package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/service/snapshotcache"
	"FinDash/internal/services/features"
	applogger "FinDash/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ListingLimits caps how many listings are requested per location.
type ListingLimits struct {
	Sale int
	Rent int
	Sold int
}

// DefaultListingLimits are the per-location request sizes.
var DefaultListingLimits = ListingLimits{Sale: 50, Rent: 50, Sold: 30}

// AggregatorOption configures MarketAggregator.
type AggregatorOption func(*MarketAggregator)

func WithListingLimits(l ListingLimits) AggregatorOption {
	return func(a *MarketAggregator) {
		if l.Sale > 0 {
			a.limits.Sale = l.Sale
		}
		if l.Rent > 0 {
			a.limits.Rent = l.Rent
		}
		if l.Sold > 0 {
			a.limits.Sold = l.Sold
		}
	}
}

// WithOccupancy replaces the synthetic occupancy source.
func WithOccupancy(f features.OccupancyFunc) AggregatorOption {
	return func(a *MarketAggregator) {
		if f != nil {
			a.occupancy = f
		}
	}
}

// WithSink hands every fresh snapshot to sink after it is cached.
func WithSink(sink domrepo.SnapshotSink) AggregatorOption {
	return func(a *MarketAggregator) {
		if sink != nil {
			a.sink = sink
		}
	}
}

// WithAggregateTimeout bounds a whole aggregation call. Zero means no bound.
func WithAggregateTimeout(d time.Duration) AggregatorOption {
	return func(a *MarketAggregator) { a.timeout = d }
}

// MarketAggregator merges cached snapshots with freshly fetched ones.
type MarketAggregator struct {
	cache     *snapshotcache.Store
	gateway   domrepo.RealEstateGateway
	sink      domrepo.SnapshotSink
	logger    *applogger.Logger
	metrics   domrepo.Metrics
	occupancy features.OccupancyFunc
	limits    ListingLimits
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
}

func NewMarketAggregator(cache *snapshotcache.Store, gateway domrepo.RealEstateGateway, logger *applogger.Logger, metrics domrepo.Metrics, opts ...AggregatorOption) *MarketAggregator {
	a := &MarketAggregator{
		cache:     cache,
		gateway:   gateway,
		logger:    logger,
		metrics:   metrics,
		occupancy: features.DefaultOccupancy(),
		limits:    DefaultListingLimits,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AggregateMarketData returns cached snapshots followed by fresh ones.
// Locations that could not be fetched are absent; the call itself never fails.
func (a *MarketAggregator) AggregateMarketData(ctx context.Context, locations []models.Location) []models.MarketSnapshot {
	return a.AggregateWithReport(ctx, locations).Snapshots
}

// locResult is the tagged outcome of one location pipeline.
type locResult struct {
	idx      int
	snapshot *models.MarketSnapshot
	status   models.OutcomeStatus
	err      error
}

// AggregateWithReport is AggregateMarketData plus one outcome per distinct
// zip code, in input order.
func (a *MarketAggregator) AggregateWithReport(ctx context.Context, locations []models.Location) *models.AggregateReport {
	start := time.Now()
	defer func() { a.metrics.RecordLatency("aggregate_market_data", time.Since(start).Seconds()) }()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	locs := uniqueByZip(locations)
	report := &models.AggregateReport{
		Snapshots: make([]models.MarketSnapshot, 0, len(locs)),
		Outcomes:  make([]models.LocationOutcome, len(locs)),
		Timestamp: a.now().UTC(),
	}

	// Fan out cache lookups; every slot is written by exactly one goroutine.
	hits := make([]*models.MarketSnapshot, len(locs))
	var wg sync.WaitGroup
	for i, loc := range locs {
		wg.Add(1)
		go func(i int, zip string) {
			defer wg.Done()
			hits[i] = a.cache.Get(ctx, zip)
		}(i, loc.ZipCode)
	}
	wg.Wait()

	toFetch := make([]int, 0, len(locs))
	for i, hit := range hits {
		report.Outcomes[i] = models.LocationOutcome{ZipCode: locs[i].ZipCode, City: locs[i].City}
		if hit != nil {
			report.Snapshots = append(report.Snapshots, *hit)
			report.Outcomes[i].Status = models.OutcomeCached
			continue
		}
		toFetch = append(toFetch, i)
	}

	a.logger.Debug("market aggregation partitioned",
		applogger.Int("cached", len(locs)-len(toFetch)),
		applogger.Int("to_fetch", len(toFetch)),
	)

	switch {
	case len(toFetch) == 0:
		return a.finish(report)
	case !a.gateway.Configured():
		a.logger.Warn("realestate gateway not configured, returning cached snapshots only",
			applogger.Int("skipped", len(toFetch)),
		)
		for _, i := range toFetch {
			report.Outcomes[i].Status = models.OutcomeSkipped
		}
		return a.finish(report)
	}

	results := make(chan locResult, len(toFetch))
	for _, i := range toFetch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- a.runPipeline(ctx, i, locs[i])
		}(i)
	}
	go func() { wg.Wait(); close(results) }()

	fresh := make([]*models.MarketSnapshot, len(locs))
	for r := range results {
		report.Outcomes[r.idx].Status = r.status
		if r.err != nil {
			report.Outcomes[r.idx].Error = r.err.Error()
		}
		fresh[r.idx] = r.snapshot
	}
	for _, s := range fresh {
		if s != nil {
			report.Snapshots = append(report.Snapshots, *s)
		}
	}
	return a.finish(report)
}

func (a *MarketAggregator) finish(report *models.AggregateReport) *models.AggregateReport {
	for _, o := range report.Outcomes {
		a.metrics.RecordOutcome(string(o.Status))
	}
	return report
}

// runPipeline fetches, derives and persists one location. Panics in the
// pipeline or its sub-fetches become an error outcome for this location only.
func (a *MarketAggregator) runPipeline(ctx context.Context, idx int, loc models.Location) (res locResult) {
	res.idx = idx
	defer func() {
		if p := recover(); p != nil {
			res = locResult{idx: idx, status: models.OutcomeError, err: fmt.Errorf("panic: %v", p)}
		}
		if res.err != nil {
			a.metrics.RecordError("aggregate_location")
			a.logger.Error("market location pipeline failed",
				applogger.String("zip_code", loc.ZipCode),
				applogger.String("city", loc.City),
				applogger.Error(res.err),
			)
		}
	}()

	// Sale and sold listings are requested alongside trends but no derived
	// field reads them yet.
	var (
		trends  *models.MarketTrends
		rentals []models.Property
	)
	g, gctx := errgroup.WithContext(ctx)
	goSafe(g, func() { trends = a.gateway.MarketTrends(gctx, loc.City, loc.State) })
	goSafe(g, func() { _ = a.gateway.PropertiesForSale(gctx, loc.City, loc.State, a.limits.Sale) })
	goSafe(g, func() { rentals = a.gateway.PropertiesForRent(gctx, loc.City, loc.State, a.limits.Rent) })
	goSafe(g, func() { _ = a.gateway.RecentlySold(gctx, loc.City, loc.State, a.limits.Sold) })
	if err := g.Wait(); err != nil {
		res.status, res.err = models.OutcomeError, err
		return res
	}

	if err := ctx.Err(); err != nil {
		res.status, res.err = models.OutcomeError, err
		return res
	}
	if trends == nil {
		a.logger.Info("no market trends for location", applogger.String("zip_code", loc.ZipCode), applogger.String("city", loc.City))
		res.status = models.OutcomeNoData
		return res
	}

	snap := features.Derive(loc, *trends, rentals, a.occupancy(loc))
	fetchedAt := a.cache.Put(ctx, snap)
	a.publish(ctx, snap, fetchedAt)

	res.snapshot, res.status = &snap, models.OutcomeFresh
	return res
}

func (a *MarketAggregator) publish(ctx context.Context, snap models.MarketSnapshot, fetchedAt time.Time) {
	if a.sink == nil {
		return
	}
	ev := &models.SnapshotEvent{
		ID:        a.newID(),
		Type:      models.SnapshotEventType,
		Snapshot:  snap,
		FetchedAt: fetchedAt,
	}
	if err := a.sink.Publish(ctx, ev); err != nil {
		a.metrics.RecordError("snapshot_sink")
		a.logger.Error("snapshot sink publish failed",
			applogger.String("zip_code", snap.ZipCode),
			applogger.String("event_id", ev.ID),
			applogger.Error(err),
		)
	}
}

// goSafe runs fn on g and turns a panic into the group's error.
func goSafe(g *errgroup.Group, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		fn()
		return nil
	})
}

// uniqueByZip keeps the first location for each zip code, preserving order.
func uniqueByZip(locations []models.Location) []models.Location {
	seen := make(map[string]struct{}, len(locations))
	out := make([]models.Location, 0, len(locations))
	for _, l := range locations {
		if _, ok := seen[l.ZipCode]; ok {
			continue
		}
		seen[l.ZipCode] = struct{}{}
		out = append(out, l)
	}
	return out
}
