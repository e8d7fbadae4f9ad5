package services

import "restaurant_pos_backend/internal/models"

// forward is the kitchen progression; each status may only advance to its successor.
var forward = map[string]string{
	models.OrderStatusPending:   models.OrderStatusPreparing,
	models.OrderStatusPreparing: models.OrderStatusReady,
	models.OrderStatusReady:     models.OrderStatusServed,
	models.OrderStatusServed:    models.OrderStatusCompleted,
}

func isValidOrderStatus(status string) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusPreparing, models.OrderStatusReady,
		models.OrderStatusServed, models.OrderStatusCompleted, models.OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminalStatus reports whether no further transition is possible.
func IsTerminalStatus(status string) bool {
	return status == models.OrderStatusCompleted || status == models.OrderStatusCancelled
}

// CanTransition reports whether an order in status from may move to status to.
// Cancellation is only possible while the order is still pending.
func CanTransition(from, to string) bool {
	if to == models.OrderStatusCancelled {
		return from == models.OrderStatusPending
	}
	next, ok := forward[from]
	return ok && next == to
}
