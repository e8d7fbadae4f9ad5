package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant_pos_backend/internal/models"
)

// MenuRepository reads the menu and recipe graph. It never writes.
type MenuRepository interface {
	GetMenuItemPortion(ctx context.Context, executor SQLExecutor, menuItemID, portionID int64) (*models.MenuItemPortion, error)
	GetRecipeLines(ctx context.Context, executor SQLExecutor, menuItemPortionID int64) ([]models.RecipeLine, error)
}

type menuRepository struct{}

// NewMenuRepository creates a new instance of MenuRepository.
func NewMenuRepository() MenuRepository {
	return &menuRepository{}
}

func (r *menuRepository) GetMenuItemPortion(ctx context.Context, executor SQLExecutor, menuItemID, portionID int64) (*models.MenuItemPortion, error) {
	query := `SELECT mip.id, mip.menu_item_id, mip.portion_id, mip.price,
	                 mi.name, mi.is_active, p.name, p.is_active
	          FROM menu_item_portions mip
	          JOIN menu_items mi ON mi.id = mip.menu_item_id
	          JOIN portions p ON p.id = mip.portion_id
	          WHERE mip.menu_item_id = $1 AND mip.portion_id = $2`

	mip := &models.MenuItemPortion{}
	err := executor.QueryRowContext(ctx, query, menuItemID, portionID).Scan(
		&mip.ID, &mip.MenuItemID, &mip.PortionID, &mip.Price,
		&mip.MenuItemName, &mip.MenuItemActive, &mip.PortionName, &mip.PortionActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting menu item %d portion %d: %v", ErrDatabaseError, menuItemID, portionID, err)
	}
	return mip, nil
}

func (r *menuRepository) GetRecipeLines(ctx context.Context, executor SQLExecutor, menuItemPortionID int64) ([]models.RecipeLine, error) {
	query := `SELECT id, menu_item_portion_id, ingredient_id, quantity
	          FROM recipe_lines
	          WHERE menu_item_portion_id = $1
	          ORDER BY ingredient_id`

	rows, err := executor.QueryContext(ctx, query, menuItemPortionID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying recipe lines for portion %d: %v", ErrDatabaseError, menuItemPortionID, err)
	}
	defer rows.Close()

	lines := []models.RecipeLine{}
	for rows.Next() {
		var line models.RecipeLine
		if err := rows.Scan(&line.ID, &line.MenuItemPortionID, &line.IngredientID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("%w: scanning recipe line: %v", ErrDatabaseError, err)
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating recipe lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}
