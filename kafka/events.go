package kafka

import "time"

// ProductChangedEvent announces that a catalog product was created, updated or deleted
type ProductChangedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Action    string    `json:"action"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeProductChanged = "catalog.product_changed"
)

// Kafka topics
const (
	TopicProductChanged = "catalog-product-changed"
)
