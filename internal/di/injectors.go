//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"railpulse/internal"
	"railpulse/internal/alerts"
	"railpulse/internal/analytics"
	"railpulse/internal/archive"
	"railpulse/internal/controllers"
	"railpulse/internal/providers"
	"railpulse/internal/sentiment"
	"railpulse/internal/services"
	"railpulse/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewDatabaseProvider,
		providers.NewRecordRepository,
		providers.NewAlertRepository,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		sentiment.NewClient,
		sentiment.NewClassifier,
		alerts.NewManager,
		alerts.DefaultPolicy,
		services.NewPipelineService,
		analytics.NewAggregator,

		archive.NewZstdCompressor,
		archive.NewObjectStore,
		archive.NewService,
		archive.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
