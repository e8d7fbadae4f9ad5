package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
)

// StockAdjustmentRequest is the body of add-stock and remove-stock.
type StockAdjustmentRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

type InventoryService interface {
	ListIngredients(ctx context.Context, lowStockOnly bool) ([]models.Ingredient, error)
	AddStock(ctx context.Context, ingredientID int64, req StockAdjustmentRequest, staffID *int64) (*models.Ingredient, error)
	RemoveStock(ctx context.Context, ingredientID int64, req StockAdjustmentRequest, staffID *int64) (*models.Ingredient, error)
	GetMovements(ctx context.Context, filters models.MovementFilters) ([]models.InventoryMovement, int, error)
}

type inventoryService struct {
	ingredientRepo repositories.IngredientRepository
	movementRepo   repositories.InventoryMovementRepository
	ledger         *StockLedger
	notifier       LowStockNotifier
}

func NewInventoryService(
	ir repositories.IngredientRepository,
	imr repositories.InventoryMovementRepository,
	ledger *StockLedger,
	notifier LowStockNotifier,
) InventoryService {
	return &inventoryService{ingredientRepo: ir, movementRepo: imr, ledger: ledger, notifier: notifier}
}

func (s *inventoryService) ListIngredients(ctx context.Context, lowStockOnly bool) ([]models.Ingredient, error) {
	ingredients, err := s.ingredientRepo.ListIngredients(ctx, lowStockOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	for i := range ingredients {
		ingredients[i].Status = stockLevelStatus(ingredients[i].CurrentStock, ingredients[i].ReorderLevel)
	}
	return ingredients, nil
}

func (s *inventoryService) AddStock(ctx context.Context, ingredientID int64, req StockAdjustmentRequest, staffID *int64) (*models.Ingredient, error) {
	reason := req.Reason
	if reason == "" {
		reason = "Stock received"
	}
	change, err := s.ledger.AddStock(ctx, ingredientID, req.Quantity, staffID, reason)
	if err != nil {
		return nil, mapAdjustError(err, ingredientID)
	}
	return changeToIngredient(change), nil
}

func (s *inventoryService) RemoveStock(ctx context.Context, ingredientID int64, req StockAdjustmentRequest, staffID *int64) (*models.Ingredient, error) {
	reason := req.Reason
	if reason == "" {
		reason = "Stock written off"
	}
	change, err := s.ledger.RemoveStock(ctx, ingredientID, req.Quantity, staffID, reason)
	if err != nil {
		return nil, mapAdjustError(err, ingredientID)
	}
	notifyLowStock(ctx, s.notifier, []StockChange{*change}, nil)
	return changeToIngredient(change), nil
}

// An operator naming an unknown ingredient is a plain not-found, not a recipe fault.
func mapAdjustError(err error, ingredientID int64) error {
	if errors.Is(err, ErrIngredientNotFound) {
		return fmt.Errorf("%w: ingredient %d", repositories.ErrNotFound, ingredientID)
	}
	return err
}

func changeToIngredient(c *StockChange) *models.Ingredient {
	return &models.Ingredient{
		ID:           c.IngredientID,
		Name:         c.Name,
		Unit:         c.Unit,
		CurrentStock: c.After,
		ReorderLevel: c.ReorderLevel,
		Status:       stockLevelStatus(c.After, c.ReorderLevel),
	}
}

func (s *inventoryService) GetMovements(ctx context.Context, filters models.MovementFilters) ([]models.InventoryMovement, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	movements, total, err := s.movementRepo.GetMovements(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get inventory movements: %w", err)
	}
	return movements, total, nil
}
