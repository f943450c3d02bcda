package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutletSettings carries the per-outlet GST configuration.
type OutletSettings struct {
	OutletID       uuid.UUID        `json:"outlet_id" db:"outlet_id"`
	GSTEnabled     bool             `json:"gst_enabled" db:"gst_enabled"`
	GSTPercentage  *decimal.Decimal `json:"gst_percentage" db:"gst_percentage"`
	CGSTPercentage *decimal.Decimal `json:"cgst_percentage" db:"cgst_percentage"`
	SGSTPercentage *decimal.Decimal `json:"sgst_percentage" db:"sgst_percentage"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}
