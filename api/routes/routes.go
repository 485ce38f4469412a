package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mealbridge/foodshare-backend/internal/config"
	"github.com/mealbridge/foodshare-backend/internal/handlers"
	"github.com/mealbridge/foodshare-backend/internal/middleware"
	"github.com/mealbridge/foodshare-backend/internal/models"
)

// HandlerDependencies holds every handler the router wires up
type HandlerDependencies struct {
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ListingHandler  *handlers.ListingHandler
	ClaimHandler    *handlers.ClaimHandler
	DeliveryHandler *handlers.DeliveryHandler
	ChatHandler     *handlers.ChatHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	admin := string(models.RoleAdmin)
	recipient := []string{string(models.RoleNGO), string(models.RoleFarmer)}
	volunteer := string(models.RoleVolunteer)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", deps.UserHandler.GetMe)
			users.PUT("/me", deps.UserHandler.UpdateMe)
			users.GET("/lookup/:email", deps.UserHandler.LookupUser)
			users.GET("/count", middleware.RequireRole(admin), deps.UserHandler.GetUserCount)
		}

		listings := protected.Group("/listings")
		{
			listings.GET("/available", deps.ListingHandler.GetAvailableListings)
			listings.GET("/mine", deps.ListingHandler.GetMyListings)
			listings.GET("/count", deps.ListingHandler.GetListingCount)
			listings.GET("/:id", deps.ListingHandler.GetListingByID)
			listings.GET("/:id/claims", deps.ListingHandler.GetListingClaims)
			listings.POST("", deps.ListingHandler.CreateListing)
			listings.POST("/:id/claim", middleware.RequireRole(recipient...), deps.ClaimHandler.ClaimListing)
		}

		claims := protected.Group("/claims")
		{
			claims.GET("/mine", deps.ClaimHandler.GetMyClaims)
			claims.GET("/pending", middleware.RequireRole(admin), deps.ClaimHandler.GetPendingClaims)
			claims.GET("/:id", deps.ClaimHandler.GetClaimByID)
			claims.GET("/:id/timeout", deps.ClaimHandler.CheckTimeout)
			claims.POST("/:id/approve", middleware.RequireRole(admin), deps.ClaimHandler.ApproveClaim)
			claims.POST("/:id/reject", middleware.RequireRole(admin), deps.ClaimHandler.RejectClaim)
			claims.PUT("/:id/collection-method", deps.ClaimHandler.SetCollectionMethod)
			claims.POST("/:id/confirm-collection", deps.ClaimHandler.ConfirmCollection)
			claims.POST("/:id/cancel", deps.ClaimHandler.CancelClaim)
			claims.POST("/:id/accept-delivery", middleware.RequireRole(volunteer), deps.DeliveryHandler.AcceptDelivery)
		}

		deliveries := protected.Group("/deliveries")
		{
			deliveries.GET("/open", deps.DeliveryHandler.GetOpenDeliveries)
			deliveries.GET("/mine", middleware.RequireRole(volunteer), deps.DeliveryHandler.GetMyDeliveries)
			deliveries.POST("/:id/pickup", middleware.RequireRole(volunteer), deps.DeliveryHandler.ConfirmPickup)
			deliveries.POST("/:id/complete", middleware.RequireRole(volunteer), deps.DeliveryHandler.CompleteDelivery)
			deliveries.POST("/:id/cancel", middleware.RequireRole(volunteer), deps.DeliveryHandler.CancelDelivery)
		}

		chat := protected.Group("/chat")
		{
			chat.GET("/rooms", deps.ChatHandler.GetMyRooms)
			chat.POST("/rooms", deps.ChatHandler.CreateRoom)
			chat.GET("/rooms/:id/messages", deps.ChatHandler.GetMessages)
			chat.POST("/rooms/:id/messages", deps.ChatHandler.SendMessage)
			chat.GET("/rooms/:id/stream", deps.ChatHandler.StreamMessages)
			chat.POST("/rooms/:id/read", deps.ChatHandler.MarkRead)
		}
	}

	return router
}
