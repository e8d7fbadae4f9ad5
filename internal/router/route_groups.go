package router

import (
	"github.com/gin-gonic/gin"

	"restaurant_pos_backend/internal/handlers"
	"restaurant_pos_backend/internal/middleware"
)

// SetupOrderRoutes sets up the order routes.
// Kitchen staff can read orders and move them along, but not place or cancel them.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", middleware.RoleAuthMiddleware(middleware.RoleAdmin, middleware.RoleWaiter), orderHandler.PlaceOrder)
		orderRoutes.POST("/:id/cancel", middleware.RoleAuthMiddleware(middleware.RoleAdmin, middleware.RoleWaiter), orderHandler.CancelOrder)

		readers := orderRoutes.Group("")
		readers.Use(middleware.RoleAuthMiddleware(middleware.RoleAdmin, middleware.RoleWaiter, middleware.RoleKitchen))
		{
			readers.GET("", orderHandler.GetOrders)
			readers.GET("/:id", orderHandler.GetOrderByID)
			readers.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		}
	}
}

// SetupAvailabilityRoutes sets up the per-portion availability preview.
func SetupAvailabilityRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	authenticatedGroup.GET("/menu-items/:menuItemId/portions/:portionId/availability",
		middleware.RoleAuthMiddleware(middleware.RoleAdmin, middleware.RoleWaiter, middleware.RoleKitchen),
		inventoryHandler.CheckAvailability)
}

// SetupIngredientRoutes sets up the ingredient stock routes.
func SetupIngredientRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	authenticatedGroup.GET("/ingredients", middleware.RoleAuthMiddleware(middleware.RoleAdmin, middleware.RoleKitchen), inventoryHandler.ListIngredients)

	stockRoutes := authenticatedGroup.Group("/ingredients")
	stockRoutes.Use(middleware.RoleAuthMiddleware(middleware.RoleAdmin)) // Admin only for manual adjustments
	{
		stockRoutes.POST("/:id/add-stock", inventoryHandler.AddStock)
		stockRoutes.POST("/:id/remove-stock", inventoryHandler.RemoveStock)
	}
}

// SetupInventoryMovementRoutes sets up the inventory movement routes.
func SetupInventoryMovementRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryMovementRoutes := authenticatedGroup.Group("/inventory-movements")
	inventoryMovementRoutes.Use(middleware.RoleAuthMiddleware(middleware.RoleAdmin))
	{
		inventoryMovementRoutes.GET("", inventoryHandler.GetMovements)
	}
}
