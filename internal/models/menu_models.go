package models

import "github.com/shopspring/decimal"

// MenuItem is a dish on the menu. Menu data is maintained by admin tooling and is read-only here.
type MenuItem struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	CategoryID *int64 `json:"category_id,omitempty" db:"category_id"`
	IsActive   bool   `json:"is_active" db:"is_active"`
}

// Portion is a size option such as Small or Large.
type Portion struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// MenuItemPortion is the orderable unit: one (menu item, portion) pair with its price.
type MenuItemPortion struct {
	ID         int64           `json:"id" db:"id"`
	MenuItemID int64           `json:"menu_item_id" db:"menu_item_id"`
	PortionID  int64           `json:"portion_id" db:"portion_id"`
	Price      decimal.Decimal `json:"price" db:"price"`

	MenuItemName   string `json:"menu_item_name"`
	MenuItemActive bool   `json:"menu_item_active"`
	PortionName    string `json:"portion_name"`
	PortionActive  bool   `json:"portion_active"`
}

// RecipeLine declares how much of an ingredient one unit of a MenuItemPortion needs.
type RecipeLine struct {
	ID                int64           `json:"id" db:"id"`
	MenuItemPortionID int64           `json:"menu_item_portion_id" db:"menu_item_portion_id"`
	IngredientID      int64           `json:"ingredient_id" db:"ingredient_id"`
	Quantity          decimal.Decimal `json:"quantity" db:"quantity"`
}
