package pricing

import (
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// ShippingPolicy charges a flat fee unless the subtotal exceeds the threshold.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

// DefaultShippingPolicy ships free above 100.00 and charges 15.00 otherwise.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: decimal.NewFromInt(100),
		FlatFee:       decimal.NewFromInt(15),
	}
}

// Shipping returns the fee for a subtotal. Nothing to ship costs nothing.
func (p ShippingPolicy) Shipping(subtotal decimal.Decimal, itemCount int) decimal.Decimal {
	if itemCount == 0 || subtotal.GreaterThan(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}

// Totals computes subtotal, shipping and total for the given lines.
func (p ShippingPolicy) Totals(lines []model.CartLine) model.CartTotals {
	subtotal := decimal.Zero
	count := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
		count += line.Quantity
	}
	shipping := p.Shipping(subtotal, count)
	return model.CartTotals{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
		ItemCount: count,
	}
}
