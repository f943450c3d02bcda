package services

import (
	"fmt"

	"dinepos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type TaxRateMode string

const (
	// TaxRateCurrent re-reads outlet settings on every recompute.
	TaxRateCurrent TaxRateMode = "current"
	// TaxRateSnapshot keeps the rate captured when the order was created.
	TaxRateSnapshot TaxRateMode = "snapshot"
)

func ParseTaxRateMode(s string) (TaxRateMode, error) {
	switch TaxRateMode(s) {
	case "", TaxRateCurrent:
		return TaxRateCurrent, nil
	case TaxRateSnapshot:
		return TaxRateSnapshot, nil
	}
	return "", fmt.Errorf("unknown tax rate policy %q", s)
}

var hundred = decimal.NewFromInt(100)

// TaxPolicy decides which GST rate applies to an order.
type TaxPolicy struct {
	Mode        TaxRateMode
	DefaultRate decimal.Decimal
}

func NewTaxPolicy(mode TaxRateMode, defaultRate decimal.Decimal) TaxPolicy {
	return TaxPolicy{Mode: mode, DefaultRate: defaultRate}
}

// Resolve returns the rate in percent for the outlet settings. settings may be nil.
func (p TaxPolicy) Resolve(settings *models.OutletSettings) decimal.Decimal {
	if settings == nil {
		logrus.WithField("default_rate", p.DefaultRate.String()).Warn("outlet settings missing, using default GST rate")
		return p.DefaultRate
	}
	if !settings.GSTEnabled {
		return decimal.Zero
	}
	if settings.GSTPercentage != nil {
		return *settings.GSTPercentage
	}
	if settings.CGSTPercentage != nil || settings.SGSTPercentage != nil {
		return valueOrZero(settings.CGSTPercentage).Add(valueOrZero(settings.SGSTPercentage))
	}
	logrus.WithFields(logrus.Fields{
		"outlet_id":    settings.OutletID,
		"default_rate": p.DefaultRate.String(),
	}).Warn("GST enabled without a percentage, using default GST rate")
	return p.DefaultRate
}

// RateFor picks the rate for an existing order: the stored one under the snapshot
// policy, otherwise the one resolved from current settings.
func (p TaxPolicy) RateFor(order *models.Order, settings *models.OutletSettings) decimal.Decimal {
	if p.Mode == TaxRateSnapshot {
		return order.TaxRate
	}
	return p.Resolve(settings)
}

// Totals recomputes subtotal, tax and total from the full line set.
func Totals(lines []*models.OrderItem, rate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	tax = subtotal.Mul(rate).Div(hundred).Round(2)
	return subtotal, tax, subtotal.Add(tax)
}

// SplitTax divides tax into CGST and SGST. The split follows the configured component
// ratio when one exists and is half and half otherwise. The parts always sum to tax.
func SplitTax(tax decimal.Decimal, settings *models.OutletSettings) (cgst, sgst decimal.Decimal) {
	if settings != nil && settings.CGSTPercentage != nil && settings.SGSTPercentage != nil {
		sum := settings.CGSTPercentage.Add(*settings.SGSTPercentage)
		if sum.IsPositive() {
			cgst = tax.Mul(*settings.CGSTPercentage).Div(sum).Round(2)
			return cgst, tax.Sub(cgst)
		}
	}
	cgst = tax.Div(decimal.NewFromInt(2)).Round(2)
	return cgst, tax.Sub(cgst)
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
