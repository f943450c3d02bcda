package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PricingMode string

const (
	PricingModeFixed          PricingMode = "FIXED"
	PricingModeQuantityAuto   PricingMode = "QUANTITY_AUTO"
	PricingModeQuantityManual PricingMode = "QUANTITY_MANUAL"
)

func (m PricingMode) Valid() bool {
	switch m {
	case PricingModeFixed, PricingModeQuantityAuto, PricingModeQuantityManual:
		return true
	}
	return false
}

// QuantityType selects a discrete portion of a weight-based item.
type QuantityType string

const (
	QuantityQuarter      QuantityType = "QUARTER"
	QuantityHalf         QuantityType = "HALF"
	QuantityThreeQuarter QuantityType = "THREE_QUARTER"
	QuantityFull         QuantityType = "FULL"
	QuantityCustom       QuantityType = "CUSTOM"
)

func (q QuantityType) Valid() bool {
	switch q {
	case QuantityQuarter, QuantityHalf, QuantityThreeQuarter, QuantityFull, QuantityCustom:
		return true
	}
	return false
}

// ItemSearchFilter holds filter criteria for menu item queries
type ItemSearchFilter struct {
	Query         string `json:"query,omitempty"`
	Category      string `json:"category,omitempty"`
	AvailableOnly bool   `json:"available_only,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// Item is a menu catalog entry.
type Item struct {
	ID                     uuid.UUID        `json:"id" db:"id"`
	OutletID               uuid.UUID        `json:"outlet_id" db:"outlet_id"`
	Name                   string           `json:"name" db:"name"`
	Category               *string          `json:"category" db:"category"`
	PricingMode            PricingMode      `json:"pricing_mode" db:"pricing_mode"`
	Price                  decimal.Decimal  `json:"price" db:"price"`
	BasePrice              *decimal.Decimal `json:"base_price" db:"base_price"`
	QuarterPrice           *decimal.Decimal `json:"quarter_price" db:"quarter_price"`
	HalfPrice              *decimal.Decimal `json:"half_price" db:"half_price"`
	ThreeQuarterPrice      *decimal.Decimal `json:"three_quarter_price" db:"three_quarter_price"`
	FullPrice              *decimal.Decimal `json:"full_price" db:"full_price"`
	RequiresQuantity       bool             `json:"requires_quantity" db:"requires_quantity"`
	AvailableQuantityTypes []string         `json:"available_quantity_types" db:"available_quantity_types"`
	IsAvailable            bool             `json:"is_available" db:"is_available"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at" db:"updated_at"`
}

// NeedsQuantityType reports whether every order line for the item must carry a portion.
func (i *Item) NeedsQuantityType() bool {
	return i.PricingMode != PricingModeFixed
}

// OffersQuantityType reports whether the portion is on the item's menu. An empty list
// means every portion is offered.
func (i *Item) OffersQuantityType(q QuantityType) bool {
	if len(i.AvailableQuantityTypes) == 0 || q == QuantityCustom {
		return true
	}
	for _, t := range i.AvailableQuantityTypes {
		if QuantityType(t) == q {
			return true
		}
	}
	return false
}
