package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/yclin/homelist-backend/internal/middleware"

	// Registers the swagger spec
	_ "github.com/yclin/homelist-backend/docs"
)

// RegisterRoutes sets up all API routes. Reads are public; writes require an
// authenticated admin.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, itemHandler *ItemHandler, authHandler *AuthHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Public read surface
	api.GET("/items", itemHandler.GetItems)
	api.GET("/items/overview", itemHandler.GetOverview)
	api.GET("/items/:id", itemHandler.GetItem)
	api.GET("/meta", itemHandler.GetMeta)

	// Auth routes (protected)
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Admin write surface (protected)
	admin := api.Group("/items")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireAdmin())
	admin.Use(middleware.RateLimitMiddleware(rateLimiter))
	admin.POST("", itemHandler.CreateItem)
	admin.PUT("/:id", itemHandler.UpdateItem)
	admin.DELETE("/:id", itemHandler.DeleteItem)

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
