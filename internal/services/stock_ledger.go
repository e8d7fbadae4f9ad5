package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/database"
	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/pkg/utils"
)

// StockChange describes one ingredient's stock before and after a ledger mutation.
type StockChange struct {
	IngredientID int64
	Name         string
	Unit         string
	Before       decimal.Decimal
	After        decimal.Decimal
	ReorderLevel decimal.Decimal
}

// CrossedReorderLevel reports a change that took stock from above the reorder level to at or below it.
func (c StockChange) CrossedReorderLevel() bool {
	return c.Before.GreaterThan(c.ReorderLevel) && c.After.LessThanOrEqual(c.ReorderLevel)
}

// MovementRef is the provenance recorded on every movement a mutation writes.
type MovementRef struct {
	OrderID *int64
	StaffID *int64
	Reason  string
}

// StockLedger is the only writer of ingredient stock. Every mutation locks the
// affected rows in ascending id order before touching them.
type StockLedger struct {
	tx             database.Transactor
	ingredientRepo repositories.IngredientRepository
	movementRepo   repositories.InventoryMovementRepository
}

func NewStockLedger(
	tx database.Transactor,
	ir repositories.IngredientRepository,
	imr repositories.InventoryMovementRepository,
) *StockLedger {
	return &StockLedger{tx: tx, ingredientRepo: ir, movementRepo: imr}
}

// lock takes row locks on every demanded ingredient and fails if any row is missing.
func (l *StockLedger) lock(ctx context.Context, exec repositories.SQLExecutor, ids []int64) (map[int64]models.Ingredient, error) {
	rows, err := l.ingredientRepo.LockIngredients(ctx, exec, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ingredients: %w", err)
	}
	locked := make(map[int64]models.Ingredient, len(rows))
	for _, ing := range rows {
		locked[ing.ID] = ing
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			log.Error().Str("kind", "recipe_integrity").Int64("ingredient_id", id).Msg("Recipe references a missing ingredient")
			return nil, fmt.Errorf("%w: ingredient %d", ErrIngredientNotFound, id)
		}
	}
	return locked, nil
}

// CheckSufficiency locks the demanded ingredients and reports the first one, in ascending
// id order, whose stock cannot cover the demand. The locks are held until the transaction ends.
func (l *StockLedger) CheckSufficiency(ctx context.Context, exec repositories.SQLExecutor, demand Demand) error {
	ids := demand.IngredientIDs()
	if len(ids) == 0 {
		return nil
	}
	locked, err := l.lock(ctx, exec, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		ing := locked[id]
		if ing.CurrentStock.LessThan(demand[id]) {
			return &InsufficientStockError{
				IngredientID: id,
				Ingredient:   ing.Name,
				Unit:         ing.Unit,
				Required:     demand[id],
				Available:    ing.CurrentStock,
			}
		}
	}
	return nil
}

// Decrement subtracts the demand with a guarded update per ingredient and records a sale movement each.
func (l *StockLedger) Decrement(ctx context.Context, exec repositories.SQLExecutor, demand Demand, ref MovementRef) ([]StockChange, error) {
	ids := demand.IngredientIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	locked, err := l.lock(ctx, exec, ids)
	if err != nil {
		return nil, err
	}

	changes := make([]StockChange, 0, len(ids))
	for _, id := range ids {
		ing, qty := locked[id], demand[id]
		after, err := l.ingredientRepo.DecrementStock(ctx, exec, id, qty)
		if err != nil {
			if errors.Is(err, repositories.ErrStockTooLow) {
				return nil, &InsufficientStockError{
					IngredientID: id, Ingredient: ing.Name, Unit: ing.Unit,
					Required: qty, Available: ing.CurrentStock,
				}
			}
			return nil, fmt.Errorf("failed to decrement stock for %s: %w", ing.Name, err)
		}
		if err := l.record(ctx, exec, id, models.MovementTypeSale, qty.Neg(), after, ref); err != nil {
			return nil, err
		}
		changes = append(changes, StockChange{
			IngredientID: id, Name: ing.Name, Unit: ing.Unit,
			Before: ing.CurrentStock, After: after, ReorderLevel: ing.ReorderLevel,
		})
	}
	return changes, nil
}

// Increment adds the demand back unconditionally and records a return_cancellation movement each.
func (l *StockLedger) Increment(ctx context.Context, exec repositories.SQLExecutor, demand Demand, ref MovementRef) ([]StockChange, error) {
	ids := demand.IngredientIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	locked, err := l.lock(ctx, exec, ids)
	if err != nil {
		return nil, err
	}

	changes := make([]StockChange, 0, len(ids))
	for _, id := range ids {
		ing, qty := locked[id], demand[id]
		after, err := l.ingredientRepo.IncrementStock(ctx, exec, id, qty)
		if err != nil {
			return nil, fmt.Errorf("failed to restore stock for %s: %w", ing.Name, err)
		}
		if err := l.record(ctx, exec, id, models.MovementTypeReturnCancellation, qty, after, ref); err != nil {
			return nil, err
		}
		changes = append(changes, StockChange{
			IngredientID: id, Name: ing.Name, Unit: ing.Unit,
			Before: ing.CurrentStock, After: after, ReorderLevel: ing.ReorderLevel,
		})
	}
	return changes, nil
}

// AddStock increases one ingredient by an operator-specified delta in its own transaction.
func (l *StockLedger) AddStock(ctx context.Context, ingredientID int64, delta decimal.Decimal, staffID *int64, reason string) (*StockChange, error) {
	return l.adjust(ctx, ingredientID, delta, staffID, reason, models.MovementTypeAdjustmentIn)
}

// RemoveStock decreases one ingredient; it fails with ErrInsufficientStock when delta exceeds the stock.
func (l *StockLedger) RemoveStock(ctx context.Context, ingredientID int64, delta decimal.Decimal, staffID *int64, reason string) (*StockChange, error) {
	return l.adjust(ctx, ingredientID, delta, staffID, reason, models.MovementTypeAdjustmentOut)
}

func (l *StockLedger) adjust(ctx context.Context, ingredientID int64, delta decimal.Decimal, staffID *int64, reason, movementType string) (*StockChange, error) {
	if !delta.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	var change *StockChange
	err := l.tx.WithinTx(ctx, func(exec database.Executor) error {
		rows, err := l.ingredientRepo.LockIngredients(ctx, exec, []int64{ingredientID})
		if err != nil {
			return fmt.Errorf("failed to lock ingredient %d: %w", ingredientID, err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("%w: ingredient %d", ErrIngredientNotFound, ingredientID)
		}
		ing := rows[0]

		var after decimal.Decimal
		changed := delta
		if movementType == models.MovementTypeAdjustmentOut {
			changed = delta.Neg()
			after, err = l.ingredientRepo.DecrementStock(ctx, exec, ingredientID, delta)
			if errors.Is(err, repositories.ErrStockTooLow) {
				return &InsufficientStockError{
					IngredientID: ing.ID, Ingredient: ing.Name, Unit: ing.Unit,
					Required: delta, Available: ing.CurrentStock,
				}
			}
		} else {
			after, err = l.ingredientRepo.IncrementStock(ctx, exec, ingredientID, delta)
		}
		if err != nil {
			return fmt.Errorf("failed to adjust stock for %s: %w", ing.Name, err)
		}

		ref := MovementRef{StaffID: staffID, Reason: reason}
		if err := l.record(ctx, exec, ingredientID, movementType, changed, after, ref); err != nil {
			return err
		}
		change = &StockChange{
			IngredientID: ing.ID, Name: ing.Name, Unit: ing.Unit,
			Before: ing.CurrentStock, After: after, ReorderLevel: ing.ReorderLevel,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("ingredient_id", change.IngredientID).
		Str("movement_type", movementType).
		Str("before", change.Before.String()).
		Str("after", change.After.String()).
		Msg("Stock adjusted")
	return change, nil
}

func (l *StockLedger) record(ctx context.Context, exec repositories.SQLExecutor, ingredientID int64, movementType string, changed, after decimal.Decimal, ref MovementRef) error {
	movement := models.InventoryMovement{
		IngredientID:    ingredientID,
		OrderID:         ref.OrderID,
		StaffID:         ref.StaffID,
		MovementType:    movementType,
		QuantityChanged: changed,
		StockAfter:      after,
		Reason:          utils.NewNullString(ref.Reason),
		MovementDate:    time.Now(),
	}
	if _, err := l.movementRepo.CreateMovement(ctx, exec, &movement); err != nil {
		return fmt.Errorf("failed to record %s movement for ingredient %d: %w", movementType, ingredientID, err)
	}
	return nil
}
