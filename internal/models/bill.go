package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is the finalized view of a completed order.
type Bill struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OutletID      uuid.UUID       `json:"outlet_id"`
	BillNumber    string          `json:"bill_number"`
	OrderType     OrderType       `json:"order_type"`
	TableID       *uuid.UUID      `json:"table_id,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Items         []*OrderItem    `json:"items"`
	BilledAt      time.Time       `json:"billed_at"`
}
