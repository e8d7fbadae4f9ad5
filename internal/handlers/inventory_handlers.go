package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restaurant_pos_backend/internal/middleware"
	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/services"
	"restaurant_pos_backend/pkg/utils"
)

// InventoryHandler serves ingredient stock, availability previews and the movement log.
type InventoryHandler struct {
	inventoryService    services.InventoryService
	availabilityService services.AvailabilityService
}

func NewInventoryHandler(is services.InventoryService, as services.AvailabilityService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is, availabilityService: as}
}

// CheckAvailability handles GET /menu-items/:menuItemId/portions/:portionId/availability
func (h *InventoryHandler) CheckAvailability(c *gin.Context) {
	menuItemID, ok := parseIDParam(c, "menuItemId")
	if !ok {
		return
	}
	portionID, ok := parseIDParam(c, "portionId")
	if !ok {
		return
	}

	rows, err := h.availabilityService.CheckIngredientAvailability(c.Request.Context(), menuItemID, portionID)
	if err != nil {
		respondServiceError(c, err, "CheckAvailability")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"menu_item_id": menuItemID,
		"portion_id":   portionID,
		"ingredients":  rows,
	})
}

// ListIngredients handles GET /ingredients?low_stock=true
func (h *InventoryHandler) ListIngredients(c *gin.Context) {
	lowStock := false
	if v := c.Query("low_stock"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondValidationFailed(c, "low_stock must be true or false")
			return
		}
		lowStock = parsed
	}

	ingredients, err := h.inventoryService.ListIngredients(c.Request.Context(), lowStock)
	if err != nil {
		respondServiceError(c, err, "ListIngredients")
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// AddStock handles POST /ingredients/:id/add-stock
func (h *InventoryHandler) AddStock(c *gin.Context) {
	h.adjustStock(c, "AddStock", h.inventoryService.AddStock)
}

// RemoveStock handles POST /ingredients/:id/remove-stock
func (h *InventoryHandler) RemoveStock(c *gin.Context) {
	h.adjustStock(c, "RemoveStock", h.inventoryService.RemoveStock)
}

type adjustFunc func(ctx context.Context, ingredientID int64, req services.StockAdjustmentRequest, staffID *int64) (*models.Ingredient, error)

func (h *InventoryHandler) adjustStock(c *gin.Context, op string, adjust adjustFunc) {
	ingredientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	var staffID *int64
	if id, ok := middleware.StaffID(c); ok {
		staffID = &id
	}

	ingredient, err := adjust(c.Request.Context(), ingredientID, req, staffID)
	if err != nil {
		respondServiceError(c, err, op)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

// GetMovements handles GET /inventory-movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	var filters models.MovementFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, "Invalid query parameters: "+err.Error())
		return
	}

	movements, total, err := h.inventoryService.GetMovements(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "GetMovements")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        movements,
		"total_count": total,
	})
}
