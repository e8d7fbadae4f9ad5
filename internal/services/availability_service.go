package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
)

type AvailabilityService interface {
	CheckIngredientAvailability(ctx context.Context, menuItemID, portionID int64) ([]models.IngredientAvailability, error)
}

type availabilityService struct {
	db             repositories.SQLExecutor
	resolver       *RecipeResolver
	ingredientRepo repositories.IngredientRepository
}

func NewAvailabilityService(db repositories.SQLExecutor, resolver *RecipeResolver, ir repositories.IngredientRepository) AvailabilityService {
	return &availabilityService{db: db, resolver: resolver, ingredientRepo: ir}
}

// CheckIngredientAvailability previews whether one unit of the portion can be made. It takes no locks.
func (s *availabilityService) CheckIngredientAvailability(ctx context.Context, menuItemID, portionID int64) ([]models.IngredientAvailability, error) {
	resolved, err := s.resolver.Resolve(ctx, s.db, menuItemID, portionID, ResolveOrderable)
	if err != nil {
		return nil, err
	}

	demand := make(Demand, len(resolved.Requirements))
	for _, req := range resolved.Requirements {
		demand.Add(req.IngredientID, req.QuantityPerUnit)
	}
	ids := demand.IngredientIDs()
	if len(ids) == 0 {
		return []models.IngredientAvailability{}, nil
	}

	rows, err := s.ingredientRepo.GetIngredientsByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	byID := make(map[int64]models.Ingredient, len(rows))
	for _, ing := range rows {
		byID[ing.ID] = ing
	}

	result := make([]models.IngredientAvailability, 0, len(ids))
	for _, id := range ids {
		ing, ok := byID[id]
		if !ok {
			log.Error().Str("kind", "recipe_integrity").Int64("ingredient_id", id).
				Int64("menu_item_id", menuItemID).Int64("portion_id", portionID).
				Msg("Recipe references a missing ingredient")
			return nil, fmt.Errorf("%w: ingredient %d", ErrIngredientNotFound, id)
		}
		result = append(result, models.IngredientAvailability{
			IngredientID:   id,
			IngredientName: ing.Name,
			Unit:           ing.Unit,
			Required:       demand[id],
			Available:      ing.CurrentStock,
			Status:         availabilityStatus(ing.CurrentStock, demand[id], ing.ReorderLevel),
		})
	}
	return result, nil
}

func availabilityStatus(available, required, reorderLevel decimal.Decimal) models.StockStatus {
	switch {
	case available.LessThan(required):
		return models.StockOutOfStock
	case available.LessThanOrEqual(reorderLevel):
		return models.StockLow
	default:
		return models.StockInStock
	}
}

// stockLevelStatus classifies stock on its own, against the reorder level.
func stockLevelStatus(stock, reorderLevel decimal.Decimal) models.StockStatus {
	switch {
	case !stock.IsPositive():
		return models.StockOutOfStock
	case stock.LessThanOrEqual(reorderLevel):
		return models.StockLow
	default:
		return models.StockInStock
	}
}
