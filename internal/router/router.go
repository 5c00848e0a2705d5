package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/config"
	"github.com/ikkim/shopgenie-backend/internal/app/controller"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	"github.com/ikkim/shopgenie-backend/internal/middleware"
)

type Router struct {
	catalogController   *controller.CatalogController
	cartController      *controller.CartController
	wishlistController  *controller.WishlistController
	historyController   *controller.HistoryController
	sessionController   *controller.SessionController
	orderController     *controller.OrderController
	assistantController *controller.AssistantController
	eventsController    *controller.EventsController
	engine              *engine.Engine
	config              *config.Config
}

func NewRouter(
	catalogController *controller.CatalogController,
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	historyController *controller.HistoryController,
	sessionController *controller.SessionController,
	orderController *controller.OrderController,
	assistantController *controller.AssistantController,
	eventsController *controller.EventsController,
	e *engine.Engine,
	cfg *config.Config,
) *Router {
	return &Router{
		catalogController:   catalogController,
		cartController:      cartController,
		wishlistController:  wishlistController,
		historyController:   historyController,
		sessionController:   sessionController,
		orderController:     orderController,
		assistantController: assistantController,
		eventsController:    eventsController,
		engine:              e,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	router.GET("/ws", r.eventsController.Stream)

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.catalogController.ListProducts)
			products.GET("/featured", r.catalogController.FeaturedProducts)
			products.GET("/:id", r.catalogController.GetProduct)
			products.GET("/:id/related", r.catalogController.RelatedProducts)
			products.GET("/:id/insight", r.catalogController.GetInsight)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/checkout", r.cartController.Checkout)
			cart.PATCH("/items/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:id", r.cartController.RemoveFromCart)
		}

		wishlist := v1.Group("/wishlist")
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("/:product_id/toggle", r.wishlistController.ToggleWishlist)
		}

		v1.GET("/history", r.historyController.GetHistory)

		session := v1.Group("/session")
		{
			session.GET("", r.sessionController.GetSession)
			session.POST("", r.sessionController.SignIn)
			session.DELETE("", r.sessionController.SignOut)
			session.PATCH("/profile", r.sessionController.UpdateProfile)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/:id/reorder", r.orderController.Reorder)
		}

		assistant := v1.Group("/assistant/conversations")
		{
			assistant.POST("", r.assistantController.CreateConversation)
			assistant.GET("/:id", r.assistantController.GetConversation)
			assistant.POST("/:id/messages", r.assistantController.SendMessage)
		}
	}

	return router
}

// health reports "degraded" while any store has an unsaved snapshot.
func (r *Router) health(c *gin.Context) {
	degraded := r.engine.Degraded()
	status := "healthy"
	if len(degraded) > 0 {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"message":         "ShopGenie API is running",
		"degraded_stores": degraded,
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
