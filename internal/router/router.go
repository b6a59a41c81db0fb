package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/nodegate/rpc-gateway-backend/internal/config"
	"github.com/nodegate/rpc-gateway-backend/internal/handlers"
	"github.com/nodegate/rpc-gateway-backend/internal/middleware"
	"github.com/nodegate/rpc-gateway-backend/internal/services/api_key"
	"github.com/nodegate/rpc-gateway-backend/internal/services/quota"
	"github.com/nodegate/rpc-gateway-backend/internal/services/ratelimit"
)

// SetupRouter configures the Gin router with the key management, usage and
// proxy routes. publisher may be nil when RabbitMQ is unavailable.
func SetupRouter(db *gorm.DB, cfg *config.Config, publisher quota.EventPublisher) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Create a new router
	r := gin.New()

	// Use middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create services. The limiter is constructed once per process and
	// injected, never a package-level singleton.
	keyDefaults := api_key.Defaults{
		RateLimit:    cfg.DefaultRateLimit,
		MonthlyLimit: cfg.DefaultMonthlyLimit,
	}
	apiKeyService := api_key.NewService(db, keyDefaults)
	limiter := ratelimit.NewWindowLimiter()
	quotaService := quota.NewService(db, publisher, cfg.StoreTimeout)

	// Create middleware with services
	sessionMiddleware := middleware.NewSessionMiddleware(cfg.JWTSecret)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(apiKeyService, cfg.StoreTimeout)

	// Create handlers with services
	apiKeyHandler := handlers.NewAPIKeyHandler(db, keyDefaults)
	usageHandler := handlers.NewUsageHandler(db)
	rpcProxyHandler := handlers.NewRPCProxyHandler(cfg, limiter, quotaService)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Proxied RPC path, authenticated by API key
	rpc := r.Group("/rpc")
	rpc.Use(apiKeyMiddleware.APIKeyAuthMiddleware())
	{
		rpc.POST("", rpcProxyHandler.ProxyRequest)
	}

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Management routes, authenticated by dashboard session
		protected := api.Group("")
		protected.Use(sessionMiddleware.SessionAuthMiddleware())
		{
			keys := protected.Group("/keys")
			{
				keys.POST("", apiKeyHandler.Create)
				keys.GET("", apiKeyHandler.List)
				keys.PUT("/:id", apiKeyHandler.Update)
				keys.DELETE("/:id", apiKeyHandler.Revoke)
			}

			usage := protected.Group("/usage")
			{
				usage.GET("", usageHandler.List)
				usage.GET("/export", usageHandler.Export)
			}
		}
	}

	return r
}
