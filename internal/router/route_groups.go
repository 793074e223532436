package router

import (
	"ninthwaka_backend/internal/handlers"
	"ninthwaka_backend/internal/middleware"
	"ninthwaka_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterUser)
		authRoutes.POST("/login", authHandler.LoginUser)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupOrderRoutes sets up the order lifecycle routes. Fine-grained
// authorization (order party, assigned rider) lives in the services; the
// route-level role gate only keeps obviously wrong roles out.
func SetupOrderRoutes(
	authenticatedGroup *gin.RouterGroup,
	orderHandler *handlers.OrderHandler,
	chatHandler *handlers.ChatHandler,
	locationHandler *handlers.LocationHandler,
) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleCustomer), orderHandler.CreateOrder)
		orderRoutes.GET("/mine", orderHandler.GetMyOrders)
		orderRoutes.GET("/available", middleware.RoleAuthMiddleware(models.RoleRider), orderHandler.GetAvailableOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id/accept", middleware.RoleAuthMiddleware(models.RoleRider), orderHandler.AcceptOrder)
		orderRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleRider, models.RoleAdmin), orderHandler.AdvanceOrder)
		orderRoutes.POST("/:id/delivery/otp", middleware.RoleAuthMiddleware(models.RoleRider, models.RoleAdmin), orderHandler.IssueDeliveryOTP)
		orderRoutes.POST("/:id/delivery/verify", middleware.RoleAuthMiddleware(models.RoleRider, models.RoleAdmin), orderHandler.VerifyDeliveryOTP)
		orderRoutes.PATCH("/:id/delivery", middleware.RoleAuthMiddleware(models.RoleRider, models.RoleAdmin), orderHandler.UpdateDeliveryProof)

		orderRoutes.GET("/:id/chat", chatHandler.GetMessages)
		orderRoutes.POST("/:id/chat", chatHandler.SendMessage)
		orderRoutes.GET("/:id/location", locationHandler.GetRiderLocation)
	}
}

// SetupRiderRoutes sets up rider self-service routes.
func SetupRiderRoutes(authenticatedGroup *gin.RouterGroup, locationHandler *handlers.LocationHandler) {
	riderRoutes := authenticatedGroup.Group("/riders")
	riderRoutes.Use(middleware.RoleAuthMiddleware(models.RoleRider))
	{
		riderRoutes.PUT("/me/location", locationHandler.UpdateLocation)
	}
}

// SetupPayoutRoutes sets up the settlement routes.
func SetupPayoutRoutes(authenticatedGroup *gin.RouterGroup, payoutHandler *handlers.PayoutHandler) {
	payoutRoutes := authenticatedGroup.Group("/payouts")
	payoutRoutes.Use(middleware.RoleAuthMiddleware(models.RoleRider, models.RoleAdmin))
	{
		payoutRoutes.GET("", payoutHandler.GetPayouts)
		payoutRoutes.GET("/:id", payoutHandler.GetPayoutByID)

		adminPayoutRoutes := payoutRoutes.Group("")
		adminPayoutRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminPayoutRoutes.POST("/generate", payoutHandler.GeneratePayouts)
			adminPayoutRoutes.PATCH("/:id/mark-paid", payoutHandler.MarkPayoutPaid)
		}
	}
}

// SetupAdminRoutes sets up the admin-only routes.
func SetupAdminRoutes(
	authenticatedGroup *gin.RouterGroup,
	authHandler *handlers.AuthHandler,
	settingHandler *handlers.SettingHandler,
	reportHandler *handlers.ReportHandler,
) {
	adminRoutes := authenticatedGroup.Group("")
	adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminRoutes.GET("/users", authHandler.GetUsers)
		adminRoutes.GET("/settings/pricing", settingHandler.GetPricing)
		adminRoutes.PUT("/settings/pricing", settingHandler.UpdatePricing)
		adminRoutes.GET("/reports/summary", reportHandler.GetDeliverySummary)
	}
}
