// Package realtime fans out row-change events to connected point-of-sale clients.
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types mirror row changes.
const (
	EventInsert   = "INSERT"
	EventUpdate   = "UPDATE"
	EventLowStock = "LOW_STOCK"
)

// Tables an event can refer to.
const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableTables     = "restaurant_tables"
	TableInventory  = "inventory"
)

type Event struct {
	Table     string      `json:"table"`
	Type      string      `json:"type"`
	OutletID  uuid.UUID   `json:"outlet_id"`
	RecordID  uuid.UUID   `json:"record_id"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher delivers events fire-and-forget. Callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

func stamp(event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return event
}
