package router

import (
	"mySmartMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations")
	reco.POST("", handler.Recommend)
	reco.POST("/fallback", handler.Fallback)
	reco.POST("/manual", handler.Manual)

	sessions := api.Group("/sessions")
	sessions.POST("/reset", handler.ResetSession)
	sessions.GET("/:id", handler.GetSession)
}

func SetupCustomerRoutes(api *echo.Group, handler *rest.CustomerHandler) {
	customers := api.Group("/customers")

	customers.GET("/search", handler.Search)
	customers.GET("/:id/purchases", handler.GetPurchases)
	customers.GET("/:id/stats", handler.GetStats)
	customers.GET("/:id/profile", handler.GetProfile)
	customers.GET("/:id/recommendations", handler.GetRecentRecommendations)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:name/products", handler.GetProductsByCategory)
}

func SetupHealthRoutes(api *echo.Group, handler *rest.HealthHandler) {
	api.GET("/health", handler.Health)
}
