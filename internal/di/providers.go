package di

import (
	"context"
	"fmt"
	"time"

	"FinDash/internal/domain/models"
	"FinDash/internal/domain/repository"
	"FinDash/internal/handler/api"
	internalrepo "FinDash/internal/repository"
	"FinDash/internal/service/coingecko"
	"FinDash/internal/service/finnhub"
	"FinDash/internal/service/ratelimit"
	"FinDash/internal/service/realestate"
	"FinDash/internal/service/snapshotcache"
	"FinDash/internal/usecase"
	"FinDash/pkg/cache"
	pkgch "FinDash/pkg/clickhouse"
	"FinDash/pkg/config"
	xhttp "FinDash/pkg/http"
	pkgkafka "FinDash/pkg/kafka"
	applogger "FinDash/pkg/logger"
	"FinDash/pkg/metrics"
	pkgpg "FinDash/pkg/postgres"
	"FinDash/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideRateLimiter creates the limiter shared by all vendor clients.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideRealEstateGateway creates the RapidAPI gateway.
func ProvideRealEstateGateway(cfg *config.Config, limiter *ratelimit.Limiter, l *applogger.Logger, m repository.Metrics) *realestate.Gateway {
	return realestate.NewGateway(realestate.Config{
		APIKey:     cfg.RealEstate.APIKey,
		Host:       cfg.RealEstate.Host,
		BaseURL:    cfg.RealEstate.BaseURL,
		RatePerSec: cfg.RealEstate.RatePerSec,
		Burst:      cfg.RealEstate.Burst,
	}, xhttp.NewClient(xhttp.WithTimeout(cfg.RealEstate.Timeout)), limiter, l, m)
}

// ProvideFinnhubClient creates the Finnhub REST client.
func ProvideFinnhubClient(cfg *config.Config, limiter *ratelimit.Limiter, l *applogger.Logger, m repository.Metrics) *finnhub.Client {
	return finnhub.New(finnhub.Config{
		APIKey:     cfg.Finnhub.APIKey,
		BaseURL:    cfg.Finnhub.BaseURL,
		RatePerSec: cfg.Finnhub.RatePerSec,
	}, xhttp.NewClient(xhttp.WithTimeout(cfg.Finnhub.Timeout)), limiter, l, m)
}

// ProvideCoinGeckoClient creates the CoinGecko client.
func ProvideCoinGeckoClient(cfg *config.Config, l *applogger.Logger, m repository.Metrics) *coingecko.Client {
	return coingecko.New(cfg.CoinGecko.BaseURL, xhttp.NewClient(xhttp.WithTimeout(cfg.CoinGecko.Timeout)), l, m)
}

// ProvidePostgresClient connects to Postgres when it backs the snapshot cache.
// Other backends get a nil client.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	if cfg.Cache.Backend != config.CacheBackendPostgres {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	client, err := pkgpg.NewClient(ctx,
		pkgpg.WithDSN(cfg.Cache.Postgres.DSN),
		pkgpg.WithPoolSize(cfg.Cache.Postgres.MaxConns, cfg.Cache.Postgres.MinConns),
		pkgpg.WithConnMaxLifetime(30*time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	return client, nil
}

// ProvideSnapshotBackend selects the snapshot store for cache.backend.
// "none" returns a nil store, which the snapshot cache treats as always-miss.
func ProvideSnapshotBackend(cfg *config.Config, pg *pkgpg.Client, l *applogger.Logger) (repository.SnapshotStore, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendPostgres:
		store := internalrepo.NewPostgresSnapshotStore(pg, l)
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		if err := store.Init(ctx); err != nil {
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return store, nil
	case config.CacheBackendRedis:
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return internalrepo.NewCacheSnapshotStore(rc, 0), nil
	case config.CacheBackendMemory:
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize))
		return internalrepo.NewCacheSnapshotStore(mc, 0), nil
	default:
		l.Warn("snapshot cache disabled, every request refetches")
		return nil, nil
	}
}

// ProvideSnapshotCache wraps the backend with read-time expiry.
func ProvideSnapshotCache(cfg *config.Config, backend repository.SnapshotStore, l *applogger.Logger, m repository.Metrics) *snapshotcache.Store {
	return snapshotcache.New(backend, l, m, snapshotcache.WithRetention(cfg.Cache.Retention))
}

// ProvideClickHouseClient connects to ClickHouse when the history table is
// written, either directly by the sink or by the Kafka consumer.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Sink.Backend != config.SinkBackendClickHouse && !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSnapshotHistory creates the ClickHouse history table writer, or nil
// when ClickHouse is not configured.
func ProvideSnapshotHistory(ch *pkgch.Client, l *applogger.Logger) (*internalrepo.ClickHouseSnapshotHistory, error) {
	if ch == nil {
		return nil, nil
	}
	history := internalrepo.NewClickHouseSnapshotHistory(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := history.Init(ctx); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return history, nil
}

// ProvideKafkaProducer creates a Kafka producer when kafka is the sink.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Sink.Backend != config.SinkBackendKafka {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSnapshotSink picks where refreshed snapshots are published.
func ProvideSnapshotSink(cfg *config.Config, producer *pkgkafka.Producer, history *internalrepo.ClickHouseSnapshotHistory) repository.SnapshotSink {
	switch {
	case cfg.Sink.Backend == config.SinkBackendKafka && producer != nil:
		return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic)
	case cfg.Sink.Backend == config.SinkBackendClickHouse && history != nil:
		return history
	default:
		return internalrepo.NoopSink{}
	}
}

// ProvideMarketAggregator creates the real-estate aggregation use case.
func ProvideMarketAggregator(
	cfg *config.Config,
	store *snapshotcache.Store,
	gateway *realestate.Gateway,
	sink repository.SnapshotSink,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.MarketAggregator {
	return usecase.NewMarketAggregator(store, gateway, l, m,
		usecase.WithListingLimits(usecase.ListingLimits{
			Sale: cfg.RealEstate.SaleLimit,
			Rent: cfg.RealEstate.RentLimit,
			Sold: cfg.RealEstate.SoldLimit,
		}),
		usecase.WithSink(sink),
		usecase.WithAggregateTimeout(cfg.RealEstate.AggregateTTL),
	)
}

// ProvideMarketBoard creates the equities and crypto use case.
func ProvideMarketBoard(cfg *config.Config, quotes *finnhub.Client, crypto *coingecko.Client, l *applogger.Logger) *usecase.MarketBoard {
	return usecase.NewMarketBoard(quotes, crypto, cfg.Finnhub.OverviewSymbols, cfg.Finnhub.Industries, l)
}

// ProvideKafkaConsumer creates a Kafka consumer when history ingestion is on.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideSnapshotEventsHandler creates the consumer handler that appends
// snapshot events to ClickHouse.
func ProvideSnapshotEventsHandler(cfg *config.Config, history *internalrepo.ClickHouseSnapshotHistory, m repository.Metrics) *usecase.SnapshotEventsHandler {
	if !cfg.Kafka.Consumer.Enabled || history == nil {
		return nil
	}
	return usecase.NewSnapshotEventsHandler(cfg.Kafka.Topic, history, m)
}

// ProvideHandlers builds every HTTP handler the server registers.
func ProvideHandlers(
	cfg *config.Config,
	l *applogger.Logger,
	agg *usecase.MarketAggregator,
	board *usecase.MarketBoard,
	gateway *realestate.Gateway,
	quotes *finnhub.Client,
	backend repository.SnapshotStore,
	pg *pkgpg.Client,
	ch *pkgch.Client,
) []xhttp.Handler {
	locations := make([]models.Location, 0, len(cfg.RealEstate.Locations))
	for _, loc := range cfg.RealEstate.Locations {
		locations = append(locations, models.Location{City: loc.City, State: loc.State, ZipCode: loc.ZipCode})
	}

	return []xhttp.Handler{
		api.NewRealEstateHandler(l, agg, locations),
		api.NewMarketsHandler(l, board),
		api.NewStatusHandler(gateway, quotes, cfg.Cache.Backend, cfg.Sink.Backend, healthChecks(cfg, backend, pg, ch)),
	}
}

// healthChecks pings every remote store the app was wired with.
func healthChecks(cfg *config.Config, backend repository.SnapshotStore, pg *pkgpg.Client, ch *pkgch.Client) map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{}
	if pg != nil {
		checks["postgres"] = pg.Health
	}
	if ch != nil {
		checks["clickhouse"] = ch.Health
	}
	if cfg.Cache.Backend == config.CacheBackendRedis {
		if h, ok := backend.(interface{ Health(context.Context) error }); ok {
			checks["redis"] = h.Health
		}
	}
	return checks
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, nil, cfg.Server.SlowThreshold))
	}
	return xhttp.NewServer(l, handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	eventsHandler *usecase.SnapshotEventsHandler,
	backend repository.SnapshotStore,
	sink repository.SnapshotSink,
	pg *pkgpg.Client,
	ch *pkgch.Client,
) *server.App {
	var handler pkgkafka.MessageHandler
	if eventsHandler != nil {
		handler = eventsHandler
	}

	// Closed in reverse: sink and cache first, pools last.
	resources := []server.Resource{}
	if pg != nil {
		resources = append(resources, server.Resource{Name: "postgres", Closer: pg})
	}
	if ch != nil {
		resources = append(resources, server.Resource{Name: "clickhouse", Closer: ch})
	}
	if backend != nil {
		resources = append(resources, server.Resource{Name: "snapshot_store", Closer: backend})
	}
	resources = append(resources, server.Resource{Name: "snapshot_sink", Closer: sink})

	return server.New(l, httpServer, consumer, handler, cfg.Server.ShutdownTimeout, resources...)
}
