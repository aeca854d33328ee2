//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/uranium24/Fresh-Price/pkg/config"
	"github.com/uranium24/Fresh-Price/pkg/server"
)

var coreSet = wire.NewSet(
	// Logging and infrastructure clients
	ProvideLogger,
	ProvideBackends,
	ProvideDataSources,

	// Core services
	ProvideForecaster,
	ProvideAggregator,

	// Use cases
	ProvideForecastUseCase,
	ProvideInsightsUseCase,
	ProvideCommoditiesUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		coreSet,

		// HTTP
		ProvidePriceHandler,
		ProvideHealthHandler,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Ingestion
		ProvideMetrics,
		ProvideIngestConsumer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeServices wires the use cases without the HTTP server, for the CLI.
func InitializeServices(cfg *config.Config) (*Services, func(), error) {
	wire.Build(
		coreSet,
		wire.Struct(new(Services), "*"),
	)
	return nil, nil, nil
}
