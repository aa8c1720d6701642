//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"pdistats/internal"
	"pdistats/internal/controllers"
	"pdistats/internal/dataset"
	"pdistats/internal/providers"
	"pdistats/internal/services"
	"pdistats/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		dataset.NewZstdCompressor,
		dataset.NewCSVLoader,
		dataset.NewCKANClient,
		dataset.NewSnapshotManager,
		dataset.NewScheduler,

		services.NewCatalogService,
		controllers.NewApiController,
		controllers.NewHealthController,
		controllers.NewDashboardController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
