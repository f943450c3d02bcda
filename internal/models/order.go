package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusServed    OrderStatus = "SERVED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusReady, OrderStatusServed,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further mutation of the order is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeaway
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodUPI  PaymentMethod = "UPI"
	PaymentMethodCard PaymentMethod = "CARD"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard:
		return true
	}
	return false
}

// OrderSearchFilter holds search and filter criteria for order queries
type OrderSearchFilter struct {
	Status    *OrderStatus `json:"status,omitempty"`
	OrderType *OrderType   `json:"order_type,omitempty"`
	TableID   *uuid.UUID   `json:"table_id,omitempty"`
	DateFrom  *time.Time   `json:"date_from,omitempty"`
	DateTo    *time.Time   `json:"date_to,omitempty"`
	Limit     int          `json:"limit,omitempty"`  // Page size (default: 50)
	Offset    int          `json:"offset,omitempty"` // Page offset
}

type Order struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	OutletID           uuid.UUID       `json:"outlet_id" db:"outlet_id"`
	TableID            *uuid.UUID      `json:"table_id" db:"table_id"`
	UserID             uuid.UUID       `json:"user_id" db:"user_id"`
	Status             OrderStatus     `json:"status" db:"status"`
	OrderType          OrderType       `json:"order_type" db:"order_type"`
	PaymentMethod      *PaymentMethod  `json:"payment_method" db:"payment_method"`
	Subtotal           decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax                decimal.Decimal `json:"tax" db:"tax"`
	Total              decimal.Decimal `json:"total" db:"total"`
	TaxRate            decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	CancellationReason *string         `json:"cancellation_reason" db:"cancellation_reason"`
	BillNumber         *string         `json:"bill_number" db:"bill_number"`
	BilledAt           *time.Time      `json:"billed_at" db:"billed_at"`

	// CGST and SGST hold the tax split fixed at billing.
	CGST *decimal.Decimal `json:"cgst,omitempty" db:"cgst"`
	SGST *decimal.Decimal `json:"sgst,omitempty" db:"sgst"`

	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
	Items     []*OrderItem `json:"items"`
}
