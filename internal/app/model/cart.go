package model

import (
	"github.com/shopspring/decimal"
)

// CartLine is one (product, selected options) combination in the cart.
// The embedded product is a snapshot taken when the line was created and its
// Price holds the effective unit price, not the catalog base price.
type CartLine struct {
	Product
	LineID          string          `json:"cart_item_id"`
	SelectedOptions SelectedOptions `json:"selected_options,omitempty"`
	Quantity        int             `json:"quantity"`
}

// LineTotal returns price × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l CartLine) Clone() CartLine {
	out := l
	out.Product = l.Product.Clone()
	out.SelectedOptions = l.SelectedOptions.Clone()
	return out
}

// CartTotals are derived values, never stored.
type CartTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}
