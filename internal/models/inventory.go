package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventorySearchFilter holds search and filter criteria for inventory queries
type InventorySearchFilter struct {
	ItemID       *uuid.UUID `json:"item_id,omitempty"`
	LowStockOnly bool       `json:"low_stock_only,omitempty"`
	Limit        int        `json:"limit,omitempty"`  // Page size (default: 50)
	Offset       int        `json:"offset,omitempty"` // Page offset
}

// Inventory is the materialized stock of one item at one outlet.
type Inventory struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	OutletID          uuid.UUID       `json:"outlet_id" db:"outlet_id"`
	ItemID            uuid.UUID       `json:"item_id" db:"item_id"`
	Stock             decimal.Decimal `json:"stock" db:"stock"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold" db:"low_stock_threshold"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

func (i *Inventory) LowStock() bool {
	return i.Stock.LessThanOrEqual(i.LowStockThreshold)
}

// InventoryView is an inventory record decorated for API responses.
type InventoryView struct {
	*Inventory
	ItemName string `json:"item_name"`
	IsLow    bool   `json:"low_stock"`
}

// InventoryLog is an append-only stock movement.
type InventoryLog struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OutletID  uuid.UUID       `json:"outlet_id" db:"outlet_id"`
	ItemID    uuid.UUID       `json:"item_id" db:"item_id"`
	Change    decimal.Decimal `json:"change" db:"change"`
	Reason    string          `json:"reason" db:"reason"`
	CreatedBy uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
