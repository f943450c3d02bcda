package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates completed orders of an outlet over a period.
type SalesSummary struct {
	OutletID        uuid.UUID                  `json:"outlet_id"`
	From            time.Time                  `json:"from"`
	To              time.Time                  `json:"to"`
	OrderCount      int                        `json:"order_count"`
	CancelledCount  int                        `json:"cancelled_count"`
	GrossSales      decimal.Decimal            `json:"gross_sales"`
	NetSales        decimal.Decimal            `json:"net_sales"`
	TaxCollected    decimal.Decimal            `json:"tax_collected"`
	AverageTicket   decimal.Decimal            `json:"average_ticket"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
	ByOrderType     map[string]int             `json:"by_order_type"`
	TopItems        []TopItem                  `json:"top_items"`
	GeneratedAt     time.Time                  `json:"generated_at"`
}

type TopItem struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}
