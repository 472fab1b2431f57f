package internal

import (
	"net/http"

	"weschedule/internal/controllers"
	"weschedule/internal/providers"
	"weschedule/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/availability", http.HandlerFunc(apiController.UpsertAvailability))
	routers.Get("/availability", http.HandlerFunc(apiController.GetAvailability))
	routers.Get("/coverage", http.HandlerFunc(apiController.GetCoverage))
	routers.Get("/recommend", http.HandlerFunc(apiController.RecommendSlots))
	routers.Get("/users", http.HandlerFunc(apiController.GetUsers))
	return routers
}
