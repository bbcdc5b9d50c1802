//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"ytmeta/internal"
	"ytmeta/internal/archive"
	"ytmeta/internal/controllers"
	"ytmeta/internal/providers"
	"ytmeta/internal/report"
	"ytmeta/internal/services"
	"ytmeta/internal/structures"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	services.NewHistoryService,
	storeStats,
	providers.NewMetricsProvider,

	archive.NewCompressor,
	archive.NewFileManager,
	archive.NewScheduler,
	archive.NewDumpWriter,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		coreSet,
		providers.NewInstrumentedCacheProvider,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitToolkit(cfg *structures.CliFlags) (*internal.Toolkit, error) {

	wire.Build(
		coreSet,
		report.NewReporter,
		internal.NewToolkit,
	)

	return nil, nil
}
