//go:build wireinject
// +build wireinject

package di

import (
	"ScreenPull/pkg/config"
	"ScreenPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideJobStore,
		ProvideCandleStore,
		ProvideEventPublisher,

		// Services
		ProvideSymbolProvider,
		ProvideMarketData,

		// Use cases
		ProvideScreeningConfig,
		ProvideOrchestrator,

		// HTTP surface
		ProvideProgressWSHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
