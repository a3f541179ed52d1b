//go:build wireinject
// +build wireinject

package di

import (
	"DragonVeins/pkg/config"
	"DragonVeins/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideEventSink,

		// Market feed
		ProvideMarketFeed,

		// Use cases
		ProvideSession,
		ProvideDetailService,
		ProvidePoller,

		// HTTP surface
		ProvideStreamHandler,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
