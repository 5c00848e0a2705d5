package model

import (
	"github.com/shopspring/decimal"
)

// VariantOption is one axis of customization, e.g. Color or Size.
type VariantOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	// PriceModifiers maps a value to an additive price delta. Values without an
	// entry, or a nil map, add nothing.
	PriceModifiers map[string]decimal.Decimal `json:"price_modifiers,omitempty"`
}

// Delta returns the price delta for value, zero when undefined.
func (o VariantOption) Delta(value string) decimal.Decimal {
	if d, ok := o.PriceModifiers[value]; ok {
		return d
	}
	return decimal.Zero
}

// Allows reports whether value is one of the option's allowed values.
func (o VariantOption) Allows(value string) bool {
	for _, v := range o.Values {
		if v == value {
			return true
		}
	}
	return false
}

func (o VariantOption) Clone() VariantOption {
	out := o
	out.Values = append([]string(nil), o.Values...)
	if o.PriceModifiers != nil {
		out.PriceModifiers = make(map[string]decimal.Decimal, len(o.PriceModifiers))
		for k, v := range o.PriceModifiers {
			out.PriceModifiers[k] = v
		}
	}
	return out
}

// SelectedOptions maps an option name to the chosen value. A nil or empty
// selection means "no options chosen".
type SelectedOptions map[string]string

func (s SelectedOptions) IsEmpty() bool {
	return len(s) == 0
}

// Clone copies the selection; an empty selection normalizes to nil.
func (s SelectedOptions) Clone() SelectedOptions {
	if len(s) == 0 {
		return nil
	}
	out := make(SelectedOptions, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
