package api

import (
	"net/http"

	authDelivery "jobtrail-backend/internal/auth/delivery"
	authRepo "jobtrail-backend/internal/auth/repository"
	"jobtrail-backend/internal/sync"
	trackerDelivery "jobtrail-backend/internal/tracker/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, verifier authDelivery.TokenVerifier, userRepo authRepo.UserRepository, authHandler *authDelivery.AuthHandler, trackerHandler *trackerDelivery.TrackerHandler, orchestrator *sync.Orchestrator) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/tokens", authHandler.StoreTokens)
		}

		// Everything below requires a session token
		protected := api.Group("")
		protected.Use(authDelivery.AuthMiddleware(verifier, userRepo))
		{
			protected.GET("/me", authHandler.Me)

			// Manual sync trigger, same path the scheduler runs
			protected.POST("/sync/gmail", func(c *gin.Context) {
				userID := c.GetString("userID")
				if err := orchestrator.SyncUser(c.Request.Context(), userID); err != nil {
					c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, gin.H{"status": "synced"})
			})

			protected.GET("/messages", trackerHandler.GetMessages)
			protected.GET("/messages/search", trackerHandler.SearchMessages)
			protected.PATCH("/messages/:id", trackerHandler.FinalizeMessage)
			protected.POST("/messages/:id/claim", trackerHandler.ClaimMessage)

			protected.GET("/applications", trackerHandler.GetApplications)
			protected.GET("/applications/:id", trackerHandler.GetApplicationByID)

			protected.POST("/classifications", trackerHandler.Classify)

			protected.GET("/insights/summary", trackerHandler.GetInsightsSummary)
			protected.GET("/insights/company_leaderboard", trackerHandler.GetCompanyLeaderboard)
		}
	}
}
