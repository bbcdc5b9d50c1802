package internal

import (
	"net/http"

	"ytmeta/internal/controllers"
	"ytmeta/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/snapshot", http.HandlerFunc(apiController.Snapshot))
	routers.Get("/history", http.HandlerFunc(apiController.History))
	routers.Get("/entities", http.HandlerFunc(apiController.Entities))
	routers.Post("/ingest", http.HandlerFunc(apiController.Ingest))
	return routers
}
