package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation = errors.New("validation error") // Generic validation error

	// ErrInvalidLine covers malformed order lines and lines that do not name an orderable unit.
	ErrInvalidLine = errors.New("invalid order line")
	// ErrMenuItemPortionNotFound is a kind of ErrInvalidLine.
	ErrMenuItemPortionNotFound = fmt.Errorf("%w: menu item portion not found", ErrInvalidLine)
	ErrItemDisabled            = errors.New("menu item is disabled")
	ErrPortionDisabled         = errors.New("portion is disabled")

	// ErrIngredientNotFound means a recipe references an ingredient row that does not exist.
	// It is a configuration fault, not a user error.
	ErrIngredientNotFound = errors.New("recipe references a missing ingredient")
	ErrInsufficientStock  = errors.New("insufficient stock")

	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidStatus     = errors.New("invalid order status")
)

// InsufficientStockError reports the first ingredient (in ascending id order) that cannot cover its demand.
type InsufficientStockError struct {
	IngredientID int64
	Ingredient   string
	Unit         string
	Required     decimal.Decimal
	Available    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: required %s %s, available %s %s",
		e.Ingredient, e.Required.String(), e.Unit, e.Available.String(), e.Unit)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidTransitionError carries the refused status move.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
