// Package router wires handlers and middleware into the gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/infrastructure/config"
	"github.com/webconf/checkout/internal/infrastructure/logger"
	"github.com/webconf/checkout/internal/interfaces/http/handler"
	"github.com/webconf/checkout/internal/interfaces/http/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Customer *handler.CustomerHandler
	Order    *handler.OrderHandler
	IPN      *handler.IPNHandler
	Health   *handler.HealthHandler
}

// New builds the gin engine with the API routes. Catalog browsing and
// registration are public; orders require the customer link token; IPN
// endpoints are called by the payment provider.
func New(cfg *config.Config, handlers Handlers, authenticator middleware.CustomerAuthenticator, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))

	engine.GET("/health", handlers.Health.Health)

	// provider notification endpoints, mounted on both historical paths
	engine.POST("/payments/ipn", handlers.IPN.Notify)
	engine.POST("/orders/ipn", handlers.IPN.Notify)

	api := engine.Group("/api/v1")
	{
		api.GET("/items", handlers.Catalog.ListItems)
		api.GET("/items/:id", handlers.Catalog.GetItem)
		api.GET("/discount-codes", handlers.Catalog.FindDiscountCode)

		api.POST("/customers", handlers.Customer.Register)

		authed := api.Group("")
		authed.Use(middleware.CustomerAuth(authenticator))
		{
			authed.GET("/customers/me", handlers.Customer.Me)

			authed.POST("/orders", handlers.Order.Create)
			authed.GET("/orders", handlers.Order.List)
			authed.GET("/orders/:id", handlers.Order.Get)
			authed.POST("/orders/:id/cancellation", handlers.Order.CreateCancellation)
			authed.GET("/orders/:id/cancellation", handlers.Order.GetCancellation)
		}
	}

	return engine
}
