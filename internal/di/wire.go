//go:build wireinject
// +build wireinject

package di

import (
	"FinDash/pkg/config"
	"FinDash/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideRateLimiter,

		// Vendor clients
		ProvideRealEstateGateway,
		ProvideFinnhubClient,
		ProvideCoinGeckoClient,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideSnapshotBackend,
		ProvideSnapshotCache,
		ProvideSnapshotHistory,
		ProvideSnapshotSink,

		// Use cases
		ProvideMarketAggregator,
		ProvideMarketBoard,
		ProvideSnapshotEventsHandler,

		// HTTP
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
