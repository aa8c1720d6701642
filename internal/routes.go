package internal

import (
	"net/http"

	"pdistats/internal/controllers"
	"pdistats/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, dashboardController *controllers.DashboardController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/datasets", http.HandlerFunc(apiController.GetDatasets))
	routers.Get("/schema", http.HandlerFunc(apiController.GetSchema))
	routers.Get("/rows", http.HandlerFunc(apiController.GetRows))
	routers.Get("/search", http.HandlerFunc(apiController.SearchRows))
	routers.Get("/export", http.HandlerFunc(apiController.ExportCSV))
	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Get("/top", http.HandlerFunc(apiController.GetTop))
	routers.Get("/ranking", http.HandlerFunc(apiController.GetRanking))
	routers.Get("/series", http.HandlerFunc(apiController.GetSeries))
	routers.Post("/fetch", http.HandlerFunc(apiController.FetchDataset))
	routers.Get("/", http.HandlerFunc(dashboardController.Index))
	return routers
}
