package routes

import (
	"storefront-bff/handlers"
	"storefront-bff/middleware"
	"storefront-bff/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the route table needs to build its handlers.
type Deps struct {
	Store        handlers.StoreAPI
	KV           storage.KeyValueStore
	Logger       *zap.Logger
	LoginLimiter *middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	// Initialize handlers
	guestCartHandler := &handlers.GuestCartHandler{KV: deps.KV, Logger: deps.Logger}
	cartHandler := &handlers.CartHandler{Store: deps.Store, KV: deps.KV, Logger: deps.Logger}
	authHandler := &handlers.AuthHandler{Store: deps.Store, KV: deps.KV, Logger: deps.Logger}

	api := r.Group("/api")

	// Guest cart routes, keyed by the guest session token
	guest := api.Group("/guest")
	guest.Use(middleware.GuestSession())
	{
		guest.GET("/cart", guestCartHandler.GetCart)
		guest.POST("/cart", guestCartHandler.AddItem)
		guest.PATCH("/cart/gift-wrap", guestCartHandler.SetGiftWrap)
		guest.PATCH("/cart/:id", guestCartHandler.UpdateItem)
		guest.DELETE("/cart/:id", guestCartHandler.RemoveItem)
		guest.DELETE("/cart", guestCartHandler.ClearCart)
	}

	// Auth routes
	login := []gin.HandlerFunc{middleware.OptionalGuestSession(), authHandler.Login}
	if deps.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{deps.LoginLimiter.Middleware()}, login...)
	}
	api.POST("/auth/login", login...)

	// Protected routes (require a store API access token)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/cart", cartHandler.GetCart)
		protected.POST("/cart", cartHandler.AddToCart)
		protected.PATCH("/cart/gift-wrap", cartHandler.SetGiftWrap)
		protected.PATCH("/cart/:id", cartHandler.UpdateCartItem)
		protected.DELETE("/cart/:id", cartHandler.RemoveFromCart)
		protected.DELETE("/cart", cartHandler.ClearCart)
		protected.POST("/cart/reconcile", middleware.RequireGuestSession(), cartHandler.Reconcile)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
