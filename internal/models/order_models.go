package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID           int64           `json:"id" db:"id"`
	TableNumber  int             `json:"table_number" db:"table_number"`
	StaffID      int64           `json:"staff_id" db:"staff_id"`
	CustomerID   *int64          `json:"customer_id,omitempty" db:"customer_id"`
	Status       string          `json:"status" db:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	Notes        *string         `json:"notes,omitempty" db:"notes"`
	CancelReason *string         `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`

	Items    []OrderItem `json:"items,omitempty"`
	Customer *Customer   `json:"customer,omitempty"`
	Payments []Payment   `json:"payments,omitempty"`
}

// OrderItem keeps a price snapshot; the referenced menu entries may since have been disabled.
type OrderItem struct {
	ID             int64           `json:"id" db:"id"`
	OrderID        int64           `json:"order_id" db:"order_id"`
	MenuItemID     int64           `json:"menu_item_id" db:"menu_item_id"`
	PortionID      int64           `json:"portion_id" db:"portion_id"`
	Quantity       int             `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total" db:"line_total"`
	SpecialRequest *string         `json:"special_request,omitempty" db:"special_request"`
	MenuItemName   string          `json:"menu_item_name,omitempty"`
	PortionName    string          `json:"portion_name,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	StaffID     *int64  `form:"staff_id"`
	TableNumber *int    `form:"table_number"`
	Status      *string `form:"status"`
	Date        *string `form:"date"` // Expected format YYYY-MM-DD
	Page        int     `form:"page"`
	PageSize    int     `form:"page_size"`
}
