//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"weschedule/internal"
	"weschedule/internal/controllers"
	"weschedule/internal/providers"
	"weschedule/internal/services"
	"weschedule/internal/storage"
	"weschedule/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewZstdCompressor,
		services.NewAvailabilityService,
		storage.NewColdStorage,
		storage.NewFileManager,
		storage.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
