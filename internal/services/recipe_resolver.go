package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
)

// ResolveMode selects whether inactive menu entries are rejected.
type ResolveMode int

const (
	// ResolveOrderable rejects disabled menu items and portions. Used for new orders and previews.
	ResolveOrderable ResolveMode = iota
	// ResolveHistorical ignores active flags so existing order lines can always be re-resolved.
	ResolveHistorical
)

// IngredientRequirement is the quantity of one ingredient needed for a single unit.
type IngredientRequirement struct {
	IngredientID    int64
	QuantityPerUnit decimal.Decimal
}

// ResolvedPortion is an orderable unit together with its per-unit recipe.
type ResolvedPortion struct {
	Portion      *models.MenuItemPortion
	Requirements []IngredientRequirement
}

type RecipeResolver struct {
	menuRepo repositories.MenuRepository
}

func NewRecipeResolver(menuRepo repositories.MenuRepository) *RecipeResolver {
	return &RecipeResolver{menuRepo: menuRepo}
}

// Resolve returns the recipe of one (menu item, portion) pair. A pair without recipe lines
// resolves to an empty requirement list.
func (r *RecipeResolver) Resolve(ctx context.Context, exec repositories.SQLExecutor, menuItemID, portionID int64, mode ResolveMode) (*ResolvedPortion, error) {
	mip, err := r.menuRepo.GetMenuItemPortion(ctx, exec, menuItemID, portionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: menu item %d, portion %d", ErrMenuItemPortionNotFound, menuItemID, portionID)
		}
		return nil, fmt.Errorf("failed to load menu item %d portion %d: %w", menuItemID, portionID, err)
	}

	if mode == ResolveOrderable {
		if !mip.MenuItemActive {
			return nil, fmt.Errorf("%w: %s", ErrItemDisabled, mip.MenuItemName)
		}
		if !mip.PortionActive {
			return nil, fmt.Errorf("%w: %s (%s)", ErrPortionDisabled, mip.PortionName, mip.MenuItemName)
		}
	}

	lines, err := r.menuRepo.GetRecipeLines(ctx, exec, mip.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe for menu item portion %d: %w", mip.ID, err)
	}

	reqs := make([]IngredientRequirement, 0, len(lines))
	for _, l := range lines {
		reqs = append(reqs, IngredientRequirement{IngredientID: l.IngredientID, QuantityPerUnit: l.Quantity})
	}
	return &ResolvedPortion{Portion: mip, Requirements: reqs}, nil
}
