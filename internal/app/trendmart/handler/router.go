package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trendmart/pkg/logger"
	"trendmart/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
// Витрина публичная, back-office за JWT аутентификацией
func SetupRoutes(
	catalogHandler *CatalogHandler,
	trackingHandler *TrackingHandler,
	authHandler *AuthHandler,
	syncHandler *SyncHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware())

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "trendmart",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты витрины
	api := router.Group("/api")
	{
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.POST("/products/:id/click", trackingHandler.TrackClick)
		api.GET("/trending", trackingHandler.GetTrending)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/analytics", trackingHandler.GetAnalytics)

		api.POST("/auth/login", authHandler.Login)
	}

	// Admin эндпоинты - только для admin и manager
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireRole("admin", "manager"))
	{
		admin.GET("/dashboard", trackingHandler.GetAnalytics)

		admin.GET("/products", catalogHandler.ListAllProducts)
		admin.POST("/products", catalogHandler.CreateProduct)
		admin.PUT("/products/:id", catalogHandler.UpdateProduct)
		admin.DELETE("/products/:id", catalogHandler.DeleteProduct)
		admin.PATCH("/products/:id/toggle", catalogHandler.ToggleProduct)

		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
		admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)

		admin.POST("/sync", syncHandler.RunSync)
		admin.GET("/sync/reports", syncHandler.GetSyncReports)
	}

	return router
}
