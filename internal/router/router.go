package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"restaurant_pos_backend/internal/database"
	"restaurant_pos_backend/internal/handlers"
	"restaurant_pos_backend/internal/middleware"
	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/internal/services"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, notifier services.LowStockNotifier) {
	// Repositories
	menuRepo := repositories.NewMenuRepository()
	ingredientRepo := repositories.NewIngredientRepository(db)
	movementRepo := repositories.NewInventoryMovementRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	customerRepo := repositories.NewCustomerRepository()
	paymentRepo := repositories.NewPaymentRepository()

	// Engine
	tx := database.NewTransactor(db)
	resolver := services.NewRecipeResolver(menuRepo)
	aggregator := services.NewRequirementAggregator(resolver)
	ledger := services.NewStockLedger(tx, ingredientRepo, movementRepo)

	// Services
	orderService := services.NewOrderService(tx, db, orderRepo, customerRepo, paymentRepo, movementRepo, aggregator, ledger, notifier)
	inventoryService := services.NewInventoryService(ingredientRepo, movementRepo, ledger, notifier)
	availabilityService := services.NewAvailabilityService(db, resolver, ingredientRepo)

	// Handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, availabilityService)

	apiV1 := engine.Group("/api/v1")
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupOrderRoutes(authenticated, orderHandler)
		SetupAvailabilityRoutes(authenticated, inventoryHandler)
		SetupIngredientRoutes(authenticated, inventoryHandler)
		SetupInventoryMovementRoutes(authenticated, inventoryHandler)
	}
}
