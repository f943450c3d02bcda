package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one line of an order. Price is the unit price of the chosen portion,
// frozen when the line was created.
type OrderItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderID      uuid.UUID       `json:"order_id" db:"order_id"`
	ItemID       uuid.UUID       `json:"item_id" db:"item_id"`
	ItemName     string          `json:"item_name" db:"item_name"`
	Quantity     int             `json:"quantity" db:"quantity"`
	QuantityType *QuantityType   `json:"quantity_type" db:"quantity_type"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Notes        *string         `json:"notes" db:"notes"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
