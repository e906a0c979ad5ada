//go:build wireinject
// +build wireinject

package di

import (
	"VolScan/pkg/config"
	"VolScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideBarStore,
		ProvideTrackingStore,
		ProvideSignalPublisher,
		ProvideCache,
		ProvideMarketData,

		// Pipeline services
		ProvideSnapshotBuilder,
		ProvideScreener,
		ProvideClassifier,
		ProvideTimingResolver,

		// Use cases
		ProvideTracker,
		ProvideScan,
		ProvideNotifier,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
