package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/config"
	"github.com/kolekthq/kolekt-backend/internal/handlers"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/pkg/jwt"
)

// HandlerDependencies holds the handlers used by the router
type HandlerDependencies struct {
	AuthHandler       *handlers.AuthHandler
	TenantHandler     *handlers.TenantHandler
	CustomerHandler   *handlers.CustomerHandler
	PurchaseHandler   *handlers.PurchaseHandler
	ClaimHandler      *handlers.ClaimHandler
	RewardHandler     *handlers.RewardHandler
	RedemptionHandler *handlers.RedemptionHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, tokens *jwt.TokenService, deps *HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes: everything below is scoped to the tenant in the token
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokens))
	{
		tenant := protected.Group("/tenant")
		{
			tenant.GET("", deps.TenantHandler.Get)
			tenant.PATCH("", deps.TenantHandler.Update)
		}

		customers := protected.Group("/customers")
		{
			customers.GET("", deps.CustomerHandler.List)
			customers.POST("", deps.CustomerHandler.Enroll)
			customers.GET("/:id", deps.CustomerHandler.GetByID)
			customers.POST("/:id/block", deps.CustomerHandler.SetBlocked)
			customers.POST("/:id/adjust-points", deps.CustomerHandler.AdjustPoints)
			customers.GET("/:id/balance", deps.CustomerHandler.GetBalance)
			customers.GET("/:id/transactions", deps.CustomerHandler.ListTransactions)
		}

		purchases := protected.Group("/purchases")
		{
			purchases.GET("", deps.PurchaseHandler.List)
			purchases.POST("", deps.PurchaseHandler.Log)
		}

		claims := protected.Group("/claims")
		{
			claims.GET("", deps.ClaimHandler.List)
			claims.POST("", deps.ClaimHandler.Submit)
			claims.POST("/:id/review", deps.ClaimHandler.Review)
		}

		rewards := protected.Group("/rewards")
		{
			rewards.GET("", deps.RewardHandler.List)
			rewards.GET("/suggest-points", deps.RewardHandler.SuggestPoints)
			rewards.POST("", deps.RewardHandler.Create)
			rewards.PUT("/:id", deps.RewardHandler.Update)
			rewards.DELETE("/:id", deps.RewardHandler.Delete)
		}

		redemptions := protected.Group("/redemptions")
		{
			redemptions.GET("", deps.RedemptionHandler.List)
			redemptions.POST("", deps.RedemptionHandler.Redeem)
			redemptions.POST("/verify", deps.RedemptionHandler.Verify)
			redemptions.POST("/:id/fulfill", deps.RedemptionHandler.Fulfill)
			redemptions.POST("/:id/cancel", deps.RedemptionHandler.Cancel)
		}
	}

	return router
}
