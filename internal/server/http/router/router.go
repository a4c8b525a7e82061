package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodrush/internal/server/http/handlers"
	"github.com/polkiloo/foodrush/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.FoodRushFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Authenticate(facade))

	realtimeHandler := handlers.NewRealtimeHandler(facade)
	engine.GET("/healthz", realtimeHandler.Health)
	// The upgrade must see the raw writer, so /ws stays outside the gzip group.
	engine.GET("/ws", realtimeHandler.Serve)

	orderHandler := handlers.NewOrderHandler(facade)
	deliveryHandler := handlers.NewDeliveryHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)

	api := engine.Group("/api")
	api.Use(middleware.DecompressRequest(middleware.DefaultMaxBodyBytes))
	api.Use(gzip.Gzip(gzip.DefaultCompression))

	orders := api.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id/status", middleware.AuthRequired(), orderHandler.UpdateStatus)
	orders.POST("/:id/delivery", middleware.AuthRequired(), deliveryHandler.Assign)

	deliveries := api.Group("/deliveries")
	deliveries.Use(middleware.AuthRequired())
	deliveries.PATCH("/:id/status", deliveryHandler.UpdateStatus)
	deliveries.POST("/:id/tracking", deliveryHandler.Track)
	deliveries.GET("/:id/tracking", deliveryHandler.Tracking)

	cart := api.Group("/cart")
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.AddItem)
	cart.PATCH("/items/:itemId", cartHandler.UpdateItem)
	cart.DELETE("/items/:itemId", cartHandler.RemoveItem)
	cart.POST("/conflict", cartHandler.Resolve)
	cart.POST("/checkout", cartHandler.Checkout)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.POST("/broadcast", adminHandler.Broadcast)
	admin.POST("/send", adminHandler.Send)

	return engine
}
