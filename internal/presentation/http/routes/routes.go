// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AzurNet/azurnet-go/internal/application/container"
	"github.com/AzurNet/azurnet-go/internal/presentation/http/handlers"
	"github.com/AzurNet/azurnet-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware(nil))

	// Initialize handlers
	eventHandlers := handlers.NewEventHandlers(container.VisitService, container.Logger)
	chatHandlers := handlers.NewChatHandlers(container.ChatService, container.Logger)
	analyticsHandlers := handlers.NewAnalyticsHandlers(container.DashboardAnalyticsService, container.ChatService, container.Logger)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger)
	liveHandlers := handlers.NewLiveHandlers(container.LiveBroadcaster, container.Logger)
	systemHandlers := handlers.NewSystemHandlers(container.CacheManager, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")
	{
		api.GET("/health", systemHandlers.GetHealth)

		// Public tracking endpoints used by the site snippet.
		events := api.Group("/events")
		{
			events.POST("/pageview", eventHandlers.PostPageView)
			events.POST("/session-end", eventHandlers.PostSessionEnd)
			events.POST("/contact-click", eventHandlers.PostContactClick)
		}

		// Public chat widget endpoints.
		chat := api.Group("/chat")
		{
			chat.POST("/start", chatHandlers.PostStart)
			chat.POST("/message", chatHandlers.PostMessage)
			chat.POST("/user-info", chatHandlers.PostUserInfo)
			chat.POST("/end", chatHandlers.PostEnd)
		}

		// Admin authentication.
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.POST("/refresh", authHandlers.PostRefresh)
			auth.GET("/status", authHandlers.GetStatus)
		}

		// Admin-only dashboard endpoints.
		analytics := api.Group("/analytics")
		analytics.Use(authHandlers.AuthMiddleware())
		{
			analytics.GET("/dashboard", analyticsHandlers.GetDashboard)
			analytics.POST("/reclassify", analyticsHandlers.PostReclassify)
			analytics.GET("/live", liveHandlers.GetLive)
		}

		// Admin-only operational endpoints.
		system := api.Group("/system")
		system.Use(authHandlers.AuthMiddleware())
		{
			system.GET("/performance", systemHandlers.GetPerformance)
			system.GET("/logs/levels", systemHandlers.GetLogLevels)
			system.POST("/logs/levels", systemHandlers.SetLogLevel)
		}
	}

	return r
}
