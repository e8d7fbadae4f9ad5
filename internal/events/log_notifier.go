package events

import (
	"context"

	"github.com/rs/zerolog/log"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/pkg/utils"
)

// LogNotifier writes low-stock alerts to the log. Used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyLowStock(ctx context.Context, alert models.LowStockAlert) error {
	event := log.Warn().
		Int64("ingredient_id", alert.IngredientID).
		Str("ingredient", alert.Ingredient).
		Str("current_stock", alert.CurrentStock.String()).
		Str("reorder_level", alert.ReorderLevel.String()).
		Str("unit", alert.Unit).
		Str("request_id", utils.RequestIDFromContext(ctx))
	if alert.OrderID != nil {
		event = event.Int64("order_id", *alert.OrderID)
	}
	event.Msg("Ingredient at or below reorder level")
	return nil
}
