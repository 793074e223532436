package router

import (
	"database/sql"
	"time"

	"ninthwaka_backend/internal/handlers"
	"ninthwaka_backend/internal/middleware"
	"ninthwaka_backend/internal/repositories"
	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, redisClient *redis.Client) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	payoutRepo := repositories.NewPayoutRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// Infrastructure adapters degrade to no-ops when not configured so the
	// core order flow never depends on Redis or Google being reachable.
	notifier := services.NewNopNotifier()
	if redisClient != nil {
		notifier = services.NewRedisNotifier(redisClient)
	}
	geocoder := services.NewNopGeocoder()
	if apiKey := utils.Getenv("GOOGLE_MAPS_API_KEY", ""); apiKey != "" {
		if g, err := services.NewGoogleGeocoder(apiKey); err == nil {
			geocoder = g
		} else {
			utils.LogError(err, "Failed to initialize Google geocoder, falling back to no-op")
		}
	}

	// Initialize Services
	tokenTTL := utils.GetenvDuration("JWT_TTL", 24*time.Hour)
	orderCfg := services.OrderServiceConfig{
		OTPLength: utils.GetenvInt("DELIVERY_OTP_LENGTH", 4),
		OTPTTL:    utils.GetenvDuration("DELIVERY_OTP_TTL", 15*time.Minute),
	}
	defaultCommission := utils.GetenvFloat("DEFAULT_COMMISSION_RATE_PCT", 10)
	locationTTL := utils.GetenvDuration("RIDER_LOCATION_TTL", 2*time.Minute)

	authService := services.NewAuthService(authRepo, tokenTTL)
	settingsService := services.NewSettingsService(settingRepo, defaultCommission)
	orderService := services.NewOrderService(orderRepo, settingsService, notifier, geocoder, orderCfg)
	payoutService := services.NewPayoutService(payoutRepo, orderRepo, notifier)
	chatService := services.NewChatService(chatRepo, orderRepo, notifier)
	locationService := services.NewLocationService(redisClient, orderRepo, locationTTL)
	reportService := services.NewReportService(orderRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	chatHandler := handlers.NewChatHandler(chatService)
	locationHandler := handlers.NewLocationHandler(locationService)
	settingHandler := handlers.NewSettingHandler(settingsService)
	reportHandler := handlers.NewReportHandler(reportService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupOrderRoutes(authenticated, orderHandler, chatHandler, locationHandler)
		SetupRiderRoutes(authenticated, locationHandler)
		SetupPayoutRoutes(authenticated, payoutHandler)
		SetupAdminRoutes(authenticated, authHandler, settingHandler, reportHandler)
	}
}
