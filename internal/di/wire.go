//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideHTTPClient,
		ProvideCache,
		ProvideRateLimiter,
		ProvideForecastSink,
		ProvideForecastPublisher,

		// Collaborators
		ProvideMarketData,
		ProvideNewsSource,
		ProvideArtifactSource,
		ProvideForecaster,
		ProvideStream,

		// Use cases
		ProvideMarketUseCase,
		ProvideNewsUseCase,
		ProvideForecastUseCase,

		// HTTP
		ProvideRouter,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
