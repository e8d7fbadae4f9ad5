package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/internal/services"
	"restaurant_pos_backend/pkg/utils"
)

// respondServiceError maps engine errors to API errors. Expected conditions are logged
// as warnings; recipe integrity faults and unknown failures at error level.
func respondServiceError(c *gin.Context, err error, op string) {
	fields := map[string]interface{}{"op": op, "request_id": c.GetString(utils.RequestIDKey)}

	var stockErr *services.InsufficientStockError
	var transErr *services.InvalidTransitionError
	switch {
	case errors.As(err, &stockErr):
		utils.LogWarn(err.Error(), fields)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInsufficientStock, "Insufficient stock to fulfil the order.", gin.H{
			"ingredient_id": stockErr.IngredientID,
			"ingredient":    stockErr.Ingredient,
			"unit":          stockErr.Unit,
			"required":      stockErr.Required,
			"available":     stockErr.Available,
		}))
	case errors.As(err, &transErr):
		utils.LogWarn(err.Error(), fields)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidTransition, "Order status cannot change this way.", gin.H{
			"from": transErr.From,
			"to":   transErr.To,
		}))
	case errors.Is(err, services.ErrItemDisabled):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeItemDisabled, "Menu item is not available.", err.Error()))
	case errors.Is(err, services.ErrPortionDisabled):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodePortionDisabled, "Portion is not available.", err.Error()))
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidLine), errors.Is(err, services.ErrInvalidStatus):
		utils.RespondValidationFailed(c, err.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", nil))
	case errors.Is(err, repositories.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrIngredientNotFound):
		fields["kind"] = "recipe_integrity"
		utils.LogError(err, op+": recipe configuration is inconsistent", fields)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeRecipeIntegrity, "Recipe references an ingredient that does not exist.", nil))
	default:
		utils.LogError(err, op+": unexpected error", fields)
		utils.RespondInternalError(c, "Failed to process request.")
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToPositiveInt64(c.Param(name))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid "+name+": must be a positive integer")
		return 0, false
	}
	return id, true
}
