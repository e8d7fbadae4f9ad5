package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/models"
)

// IngredientRepository owns every read and write of ingredient stock.
type IngredientRepository interface {
	// LockIngredients returns the rows for ids locked FOR UPDATE, in ascending id order.
	LockIngredients(ctx context.Context, executor SQLExecutor, ids []int64) ([]models.Ingredient, error)
	GetIngredientsByIDs(ctx context.Context, executor SQLExecutor, ids []int64) ([]models.Ingredient, error)
	GetIngredientByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Ingredient, error)
	// DecrementStock subtracts qty only if the stock covers it and returns the new stock.
	DecrementStock(ctx context.Context, executor SQLExecutor, id int64, qty decimal.Decimal) (decimal.Decimal, error)
	IncrementStock(ctx context.Context, executor SQLExecutor, id int64, qty decimal.Decimal) (decimal.Decimal, error)
	ListIngredients(ctx context.Context, lowStockOnly bool) ([]models.Ingredient, error)
}

type ingredientRepository struct {
	db *sql.DB
}

// NewIngredientRepository creates a new instance of IngredientRepository.
func NewIngredientRepository(db *sql.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

const ingredientColumns = `id, name, unit, current_stock, reorder_level, updated_at`

func scanIngredient(s scanner) (models.Ingredient, error) {
	var ing models.Ingredient
	err := s.Scan(&ing.ID, &ing.Name, &ing.Unit, &ing.CurrentStock, &ing.ReorderLevel, &ing.UpdatedAt)
	return ing, err
}

func (r *ingredientRepository) LockIngredients(ctx context.Context, executor SQLExecutor, ids []int64) ([]models.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + `
	          FROM ingredients
	          WHERE id = ANY($1)
	          ORDER BY id
	          FOR UPDATE`
	return r.queryIngredients(ctx, executor, "locking ingredients", query, pq.Array(ids))
}

func (r *ingredientRepository) GetIngredientsByIDs(ctx context.Context, executor SQLExecutor, ids []int64) ([]models.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + `
	          FROM ingredients
	          WHERE id = ANY($1)
	          ORDER BY id`
	return r.queryIngredients(ctx, executor, "getting ingredients", query, pq.Array(ids))
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1`
	ing, err := scanIngredient(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting ingredient by ID %d: %v", ErrDatabaseError, id, err)
	}
	return &ing, nil
}

func (r *ingredientRepository) DecrementStock(ctx context.Context, executor SQLExecutor, id int64, qty decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE ingredients
	          SET current_stock = current_stock - $1, updated_at = NOW()
	          WHERE id = $2 AND current_stock >= $1
	          RETURNING current_stock`

	var after decimal.Decimal
	err := executor.QueryRowContext(ctx, query, qty, id).Scan(&after)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pgCheckViolation {
			return decimal.Zero, ErrStockTooLow
		}
		return decimal.Zero, fmt.Errorf("%w: decrementing stock for ingredient %d: %v", ErrDatabaseError, id, err)
	}
	return after, nil
}

func (r *ingredientRepository) IncrementStock(ctx context.Context, executor SQLExecutor, id int64, qty decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE ingredients
	          SET current_stock = current_stock + $1, updated_at = NOW()
	          WHERE id = $2
	          RETURNING current_stock`

	var after decimal.Decimal
	err := executor.QueryRowContext(ctx, query, qty, id).Scan(&after)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("%w: incrementing stock for ingredient %d: %v", ErrDatabaseError, id, err)
	}
	return after, nil
}

func (r *ingredientRepository) ListIngredients(ctx context.Context, lowStockOnly bool) ([]models.Ingredient, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + ingredientColumns + ` FROM ingredients`)
	if lowStockOnly {
		qb.WriteString(` WHERE current_stock <= reorder_level`)
	}
	qb.WriteString(` ORDER BY name`)
	return r.queryIngredients(ctx, r.db, "listing ingredients", qb.String())
}

func (r *ingredientRepository) queryIngredients(ctx context.Context, executor SQLExecutor, op, query string, args ...interface{}) ([]models.Ingredient, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseError, op, err)
	}
	defer rows.Close()

	ingredients := []models.Ingredient{}
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning ingredient: %v", ErrDatabaseError, err)
		}
		ingredients = append(ingredients, ing)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ingredient rows: %v", ErrDatabaseError, err)
	}
	return ingredients, nil
}
