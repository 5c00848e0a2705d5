// Package pricing holds the pure functions behind the cart: effective unit
// prices under variant modifiers, line identity keys, and derived totals.
package pricing

import (
	"errors"
	"fmt"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownOption = errors.New("unknown product option")
	ErrInvalidValue  = errors.New("value not offered for option")
)

// EffectivePrice returns the product's base price plus the delta of every chosen
// value. Options the product does not define, and values without a modifier,
// contribute zero.
func EffectivePrice(product model.Product, selected model.SelectedOptions) decimal.Decimal {
	price := product.Price
	for name, value := range selected {
		opt, ok := product.Option(name)
		if !ok {
			continue
		}
		price = price.Add(opt.Delta(value))
	}
	return price
}

// DefaultSelection picks the first value of every option, nil when the product
// has no options.
func DefaultSelection(product model.Product) model.SelectedOptions {
	if len(product.Options) == 0 {
		return nil
	}
	sel := make(model.SelectedOptions, len(product.Options))
	for _, opt := range product.Options {
		if len(opt.Values) > 0 {
			sel[opt.Name] = opt.Values[0]
		}
	}
	return sel.Clone()
}

// ValidateSelection checks that every chosen option exists on the product and
// that the chosen value is one it offers.
func ValidateSelection(product model.Product, selected model.SelectedOptions) error {
	for name, value := range selected {
		opt, ok := product.Option(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, name)
		}
		if !opt.Allows(value) {
			return fmt.Errorf("%w: %q=%q", ErrInvalidValue, name, value)
		}
	}
	return nil
}
