package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"restaurant_pos_backend/internal/models"
)

const (
	Exchange           = "pos.events"
	LowStockRoutingKey = "inventory.low_stock"

	LowStockEventName    = "InventoryLowStock"
	LowStockEventVersion = 1

	producer = "restaurant-pos-backend"
)

// Envelope is the common wrapper for every published event.
type Envelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       T         `json:"payload"`
}

// NewLowStockEnvelope wraps an alert; events for one ingredient share a partition key.
func NewLowStockEnvelope(alert models.LowStockAlert, correlationID string) Envelope[models.LowStockAlert] {
	occurred := alert.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return Envelope[models.LowStockAlert]{
		EventName:     LowStockEventName,
		EventVersion:  LowStockEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      producer,
		PartitionKey:  strconv.FormatInt(alert.IngredientID, 10),
		OccurredAt:    occurred,
		Payload:       alert,
	}
}
