//go:build wireinject
// +build wireinject

package di

import (
	"PromoPulse/pkg/config"
	"PromoPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories
		ProvideHistoryProvider,
		ProvideNotifier,

		// Detection engine
		ProvideEngine,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
