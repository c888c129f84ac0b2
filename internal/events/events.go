package events

import (
	"encoding/json"
	"time"

	"github.com/afterclass/lessons-api/internal/domain"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
)

const (
	TopicOrderCreated   = "lesson-order.created"
	TopicOrderCancelled = "lesson-order.cancelled"
)

// Envelope is the versioned wrapper every event travels in.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string             `json:"order_id"`
	Name       string             `json:"name"`
	Items      []domain.OrderItem `json:"items"`
	TotalCents int                `json:"total_cents"`
}

type OrderCancelledPayload struct {
	OrderID string             `json:"order_id"`
	Items   []domain.OrderItem `json:"items"`
}

// PartitionKey keeps every event for one order on the same partition so
// created/cancelled stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
