package model

import (
	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategoryElectronics ProductCategory = "Electronics"
	CategoryFashion     ProductCategory = "Fashion"
	CategoryHome        ProductCategory = "Home & Kitchen"
	CategorySports      ProductCategory = "Sports"
	CategoryBeauty      ProductCategory = "Beauty"
)

// Categories lists every category in display order.
var Categories = []ProductCategory{
	CategoryElectronics,
	CategoryFashion,
	CategoryHome,
	CategorySports,
	CategoryBeauty,
}

// Valid reports whether c is one of the known categories.
func (c ProductCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Products are owned by the catalog and never mutated;
// cart lines, wishlist entries and history entries hold copies.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    ProductCategory `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Features    []string        `json:"features"`
	Options     []VariantOption `json:"options,omitempty"`
}

// Option returns the variant option with the given name.
func (p Product) Option(name string) (VariantOption, bool) {
	for _, opt := range p.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return VariantOption{}, false
}

// Clone returns a deep copy so callers can hand the product out without sharing slices.
func (p Product) Clone() Product {
	out := p
	if p.Features != nil {
		out.Features = append([]string(nil), p.Features...)
	}
	if p.Options != nil {
		out.Options = make([]VariantOption, len(p.Options))
		for i, opt := range p.Options {
			out.Options[i] = opt.Clone()
		}
	}
	return out
}
