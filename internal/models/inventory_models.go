package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement types recorded in inventory_movements.
const (
	MovementTypeSale               = "sale"
	MovementTypeReturnCancellation = "return_cancellation"
	MovementTypeAdjustmentIn       = "adjustment_in"
	MovementTypeAdjustmentOut      = "adjustment_out"
)

// StockStatus classifies an ingredient's stock against a requirement or its reorder level.
type StockStatus string

const (
	StockInStock    StockStatus = "IN_STOCK"
	StockLow        StockStatus = "LOW_STOCK"
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
)

// Ingredient is a raw material tracked in its native unit. No unit conversion is performed.
type Ingredient struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Unit         string          `json:"unit" db:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock" db:"current_stock"`
	ReorderLevel decimal.Decimal `json:"reorder_level" db:"reorder_level"`
	Status       StockStatus     `json:"status,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// InventoryMovement is one audit record of a stock change.
type InventoryMovement struct {
	ID              int64           `json:"id" db:"id"`
	IngredientID    int64           `json:"ingredient_id" db:"ingredient_id"`
	IngredientName  string          `json:"ingredient_name,omitempty"`
	OrderID         *int64          `json:"order_id,omitempty" db:"order_id"`
	StaffID         *int64          `json:"staff_id,omitempty" db:"staff_id"`
	MovementType    string          `json:"movement_type" db:"movement_type"`
	QuantityChanged decimal.Decimal `json:"quantity_changed" db:"quantity_changed"`
	StockAfter      decimal.Decimal `json:"stock_after" db:"stock_after"`
	Reason          *string         `json:"reason,omitempty" db:"reason"`
	MovementDate    time.Time       `json:"movement_date" db:"movement_date"`
}

// MovementFilters narrows GetMovements.
type MovementFilters struct {
	IngredientID *int64  `form:"ingredient_id"`
	OrderID      *int64  `form:"order_id"`
	StaffID      *int64  `form:"staff_id"`
	MovementType *string `form:"movement_type"`
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
}

// IngredientAvailability is one row of the availability preview for a menu item portion.
type IngredientAvailability struct {
	IngredientID   int64           `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Required       decimal.Decimal `json:"required"`
	Available      decimal.Decimal `json:"available"`
	Status         StockStatus     `json:"status"`
}

// LowStockAlert is raised when a stock change takes an ingredient to or below its reorder level.
type LowStockAlert struct {
	IngredientID int64           `json:"ingredient_id"`
	Ingredient   string          `json:"ingredient"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	OrderID      *int64          `json:"order_id,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
