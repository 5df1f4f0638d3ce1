package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/handlers"
	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/metrics"
)

// RegisterRoutes регистрирует JSON API, страницы и служебные маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
) {
	ginRouter.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ginRouter.GET("/metrics", metrics.Handler())

	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.SubscriptionHandler.RegisterRoutes(api)
		appHandlers.PlanHandler.RegisterRoutes(api)
		appHandlers.RedeemHandler.RegisterRoutes(api)
		appHandlers.PaymentHandler.RegisterRoutes(api)
		appHandlers.AdminHandler.RegisterRoutes(api)
		appHandlers.NavigationHandler.RegisterRoutes(api)
	}

	appHandlers.PageHandler.RegisterRoutes(ginRouter)

	ginRouter.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/home")
	})
	logger.Info("Routes registered", "count", len(ginRouter.Routes()))
}
