package internal

import (
	"net/http"

	"railpulse/internal/controllers"
	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/classify", http.HandlerFunc(apiController.ClassifyTweet))
	routers.Post("/ingest", http.HandlerFunc(apiController.IngestTweets))
	routers.Get("/tweets", http.HandlerFunc(apiController.GetTweets))
	routers.Get("/alerts", http.HandlerFunc(apiController.GetAlerts))
	routers.Post("/alerts/resolve", http.HandlerFunc(apiController.ResolveAlert))
	routers.Post("/archives/create", http.HandlerFunc(apiController.CreateArchive))
	routers.Get("/archives", http.HandlerFunc(apiController.ListArchives))
	routers.Get("/archives/get", http.HandlerFunc(apiController.GetArchive))
	routers.Get("/analytics", http.HandlerFunc(apiController.GetAnalytics))
	return routers
}
