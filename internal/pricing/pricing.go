// Package pricing computes the effective price of an order line from an item's pricing
// mode and the requested portion.
package pricing

import (
	"dinepos/internal/models"

	"github.com/shopspring/decimal"
)

var multipliers = map[models.QuantityType]decimal.Decimal{
	models.QuantityQuarter:      decimal.RequireFromString("0.25"),
	models.QuantityHalf:         decimal.RequireFromString("0.5"),
	models.QuantityThreeQuarter: decimal.RequireFromString("0.75"),
	models.QuantityFull:         decimal.NewFromInt(1),
	models.QuantityCustom:       decimal.NewFromInt(1),
}

// Fallback names the price field a quote had to substitute because the one the pricing
// mode called for was not set. The zero value means no substitution happened.
type Fallback string

const (
	FallbackNone      Fallback = ""
	FallbackBasePrice Fallback = "base_price missing, priced at 0"
	FallbackPortion   Fallback = "portion price missing, priced at 0"
	FallbackFullPrice Fallback = "full_price missing, used price"
)

// Quote is the outcome of pricing one line.
type Quote struct {
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	Fallback  Fallback
}

// Multiplier returns the fraction of a full portion the quantity type stands for.
// A nil or unknown type counts as a full portion.
func Multiplier(q *models.QuantityType) decimal.Decimal {
	if q == nil {
		return decimal.NewFromInt(1)
	}
	if m, ok := multipliers[*q]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// EffectivePrice returns unit price times quantity for the item at the given portion.
func EffectivePrice(item *models.Item, quantity int, quantityType *models.QuantityType) decimal.Decimal {
	return Price(item, quantity, quantityType).Total
}

// Price quotes a line. It never fails: missing prices fall back to 0 or to item.Price and
// the substitution is reported in Quote.Fallback. The unit price is rounded to paise so
// it matches what order_items.price can hold.
func Price(item *models.Item, quantity int, quantityType *models.QuantityType) Quote {
	var q Quote
	switch item.PricingMode {
	case models.PricingModeQuantityAuto:
		base := decimal.Zero
		if item.BasePrice != nil {
			base = *item.BasePrice
		} else {
			q.Fallback = FallbackBasePrice
		}
		q.UnitPrice = base.Mul(Multiplier(quantityType))
	case models.PricingModeQuantityManual:
		q.UnitPrice, q.Fallback = manualPortionPrice(item, quantityType)
	default:
		q.UnitPrice = item.Price
	}
	q.UnitPrice = q.UnitPrice.Round(2)
	q.Total = q.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return q
}

func manualPortionPrice(item *models.Item, quantityType *models.QuantityType) (decimal.Decimal, Fallback) {
	var portion *decimal.Decimal
	qt := models.QuantityFull
	if quantityType != nil {
		qt = *quantityType
	}
	switch qt {
	case models.QuantityQuarter:
		portion = item.QuarterPrice
	case models.QuantityHalf:
		portion = item.HalfPrice
	case models.QuantityThreeQuarter:
		portion = item.ThreeQuarterPrice
	default:
		if item.FullPrice != nil {
			return *item.FullPrice, FallbackNone
		}
		return item.Price, FallbackFullPrice
	}
	if portion == nil {
		return decimal.Zero, FallbackPortion
	}
	return *portion, FallbackNone
}
