package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restaurant_pos_backend/internal/models"
)

// InventoryMovementRepository defines the interface for inventory movement-related database operations.
type InventoryMovementRepository interface {
	CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.InventoryMovement) (int64, error)
	GetMovements(ctx context.Context, filters models.MovementFilters) ([]models.InventoryMovement, int, error)
	// SumByOrder totals the quantity_changed of one movement type per ingredient for an order.
	SumByOrder(ctx context.Context, executor SQLExecutor, orderID int64, movementType string) (map[int64]decimal.Decimal, error)
}

type inventoryMovementRepository struct {
	db *sql.DB
}

// NewInventoryMovementRepository creates a new instance of InventoryMovementRepository.
func NewInventoryMovementRepository(db *sql.DB) InventoryMovementRepository {
	return &inventoryMovementRepository{db: db}
}

func (r *inventoryMovementRepository) CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.InventoryMovement) (int64, error) {
	query := `INSERT INTO inventory_movements
	          (ingredient_id, order_id, staff_id, movement_type, quantity_changed, stock_after, reason, movement_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	if movement.MovementDate.IsZero() {
		movement.MovementDate = time.Now()
	}

	err := executor.QueryRowContext(ctx, query,
		movement.IngredientID, movement.OrderID, movement.StaffID, movement.MovementType,
		movement.QuantityChanged, movement.StockAfter, movement.Reason, movement.MovementDate,
	).Scan(&movement.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating inventory movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *inventoryMovementRepository) GetMovements(ctx context.Context, filters models.MovementFilters) ([]models.InventoryMovement, int, error) {
	movements := []models.InventoryMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    im.id, im.ingredient_id, im.order_id, im.staff_id, im.movement_type, im.quantity_changed,
	    im.stock_after, im.reason, im.movement_date,
	    i.name AS ingredient_name,
	    COUNT(*) OVER() AS total_count
	  FROM inventory_movements im
	  JOIN ingredients i ON im.ingredient_id = i.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.IngredientID != nil {
		conditions = append(conditions, fmt.Sprintf("im.ingredient_id = $%d", argCount))
		args = append(args, *filters.IngredientID)
		argCount++
	}
	if filters.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("im.order_id = $%d", argCount))
		args = append(args, *filters.OrderID)
		argCount++
	}
	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("im.staff_id = $%d", argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.MovementType != nil && *filters.MovementType != "" {
		conditions = append(conditions, fmt.Sprintf("im.movement_type = $%d", argCount))
		args = append(args, *filters.MovementType)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	page, pageSize := filters.Page, filters.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	queryBuilder.WriteString(" ORDER BY im.movement_date DESC, im.id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting inventory movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement models.InventoryMovement
		var orderID, staffID sql.NullInt64
		var reason sql.NullString

		if err := rows.Scan(
			&movement.ID, &movement.IngredientID, &orderID, &staffID, &movement.MovementType, &movement.QuantityChanged,
			&movement.StockAfter, &reason, &movement.MovementDate,
			&movement.IngredientName,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory movement: %v", ErrDatabaseError, err)
		}
		if orderID.Valid {
			movement.OrderID = &orderID.Int64
		}
		if staffID.Valid {
			movement.StaffID = &staffID.Int64
		}
		if reason.Valid {
			movement.Reason = &reason.String
		}
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory movements: %v", ErrDatabaseError, err)
	}

	return movements, totalCount, nil
}

func (r *inventoryMovementRepository) SumByOrder(ctx context.Context, executor SQLExecutor, orderID int64, movementType string) (map[int64]decimal.Decimal, error) {
	query := `SELECT ingredient_id, SUM(quantity_changed)
	          FROM inventory_movements
	          WHERE order_id = $1 AND movement_type = $2
	          GROUP BY ingredient_id`

	rows, err := executor.QueryContext(ctx, query, orderID, movementType)
	if err != nil {
		return nil, fmt.Errorf("%w: summing movements for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	sums := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var ingredientID int64
		var total decimal.Decimal
		if err := rows.Scan(&ingredientID, &total); err != nil {
			return nil, fmt.Errorf("%w: scanning movement sum: %v", ErrDatabaseError, err)
		}
		sums[ingredientID] = total
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating movement sums: %v", ErrDatabaseError, err)
	}
	return sums, nil
}
