package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authDelivery "github.com/jindalsaj/aura/internal/auth/delivery"
	propertyDelivery "github.com/jindalsaj/aura/internal/property/delivery"
	recordDelivery "github.com/jindalsaj/aura/internal/record/delivery"
	sourceDelivery "github.com/jindalsaj/aura/internal/source/delivery"
	syncDelivery "github.com/jindalsaj/aura/internal/sync/delivery"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := authDelivery.NewAuthHandler(h.authUsecase, h.deviceTokens)
	sourceHandler := sourceDelivery.NewSourceHandler(h.credUsecase, h.googleService, h.plaidClient)
	syncHandler := syncDelivery.NewSyncHandler(h.syncUsecase)
	propertyHandler := propertyDelivery.NewPropertyHandler(h.propertyRepo)
	recordHandler := recordDelivery.NewRecordHandler(h.recordRepo)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", authDelivery.AuthMiddleware(h.authUsecase), authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// Push registration routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			fcm.POST("/register", authHandler.RegisterDevice)
			fcm.DELETE("/:token", authHandler.UnregisterDevice)
		}

		// Source connection routes (protected)
		sources := api.Group("/sources")
		sources.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			sources.GET("", sourceHandler.ListConnections)
			sources.GET("/google/url", sourceHandler.GoogleAuthURL)
			sources.POST("/google", sourceHandler.ConnectGoogle)
			sources.POST("/bank/link-token", sourceHandler.CreateBankLinkToken)
			sources.POST("/bank", sourceHandler.ConnectBank)
			sources.POST("/whatsapp", sourceHandler.ConnectWhatsApp)
			sources.PUT("/:source/toggle", sourceHandler.Toggle)
			sources.DELETE("/:source", sourceHandler.Disconnect)
		}

		// Sync routes (protected)
		sync := api.Group("/sync")
		sync.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			sync.POST("", syncHandler.TriggerAll)
			sync.POST("/:source", syncHandler.TriggerSource)
			sync.GET("/status", syncHandler.GetStatus)
		}

		// Property routes (protected)
		properties := api.Group("/properties")
		properties.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			properties.GET("", propertyHandler.List)
			properties.POST("", propertyHandler.Create)
			properties.GET("/:id", propertyHandler.Get)
			properties.PUT("/:id", propertyHandler.Update)
			properties.DELETE("/:id", propertyHandler.Delete)
		}

		// Record routes (protected)
		records := api.Group("/records")
		records.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			records.GET("", recordHandler.List)
			records.GET("/counts", recordHandler.Counts)
		}
	}
}
