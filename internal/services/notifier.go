package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"restaurant_pos_backend/internal/models"
)

// LowStockNotifier receives alerts after the transaction that produced them has committed.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, alert models.LowStockAlert) error
}

// notifyLowStock forwards every change that crossed its reorder level. Failures are logged only.
func notifyLowStock(ctx context.Context, n LowStockNotifier, changes []StockChange, orderID *int64) {
	if n == nil {
		return
	}
	for _, c := range changes {
		if !c.CrossedReorderLevel() {
			continue
		}
		alert := models.LowStockAlert{
			IngredientID: c.IngredientID,
			Ingredient:   c.Name,
			Unit:         c.Unit,
			CurrentStock: c.After,
			ReorderLevel: c.ReorderLevel,
			OrderID:      orderID,
			OccurredAt:   time.Now().UTC(),
		}
		if err := n.NotifyLowStock(ctx, alert); err != nil {
			log.Warn().Err(err).Int64("ingredient_id", c.IngredientID).Msg("Failed to publish low stock alert")
		}
	}
}
