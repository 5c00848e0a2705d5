// Package catalog is the read-only product catalog the engine prices against.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
)

// AllCategories matches every category in queries.
const AllCategories = "All"

var ErrInvalidCatalog = errors.New("invalid catalog")

type SortOrder string

const (
	// SortNewest keeps catalog order; products carry no creation time to rank by.
	SortNewest    SortOrder = "newest"
	SortPriceLow  SortOrder = "low"
	SortPriceHigh SortOrder = "high"
)

// Query filters and orders a product listing.
type Query struct {
	Text     string
	Category string
	Sort     SortOrder
}

// Catalog is an immutable, ordered product list. Every accessor returns copies.
type Catalog struct {
	products []model.Product
	byID     map[string]int
}

// New validates products and builds a catalog preserving their order.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("%w: product %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p.Clone())
	}
	return c, nil
}

func validateProduct(p model.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("missing id")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("negative price %s", p.Price)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("unknown category %q", p.Category)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("rating %.1f out of range", p.Rating)
	}
	if p.Reviews < 0 {
		return fmt.Errorf("negative review count %d", p.Reviews)
	}
	seen := make(map[string]bool, len(p.Options))
	for _, opt := range p.Options {
		if seen[opt.Name] {
			return fmt.Errorf("duplicate option %q", opt.Name)
		}
		seen[opt.Name] = true
		if len(opt.Values) == 0 {
			return fmt.Errorf("option %q has no values", opt.Name)
		}
	}
	return nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// List returns every product in catalog order.
func (c *Catalog) List() []model.Product {
	out := make([]model.Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out
}

// FindByID returns the product and whether it exists.
func (c *Catalog) FindByID(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i].Clone(), true
}

// Search filters by case-insensitive name substring and category, then sorts.
func (c *Catalog) Search(q Query) []model.Product {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if text != "" && !strings.Contains(strings.ToLower(p.Name), text) {
			continue
		}
		if !matchesCategory(p, q.Category) {
			continue
		}
		out = append(out, p.Clone())
	}

	switch q.Sort {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out
}

// Featured returns the first limit products of a category, or of the whole
// catalog for AllCategories.
func (c *Catalog) Featured(category string, limit int) []model.Product {
	return firstN(c.Search(Query{Category: category}), limit)
}

// Related returns up to limit other products sharing p's category.
func (c *Catalog) Related(p model.Product, limit int) []model.Product {
	var out []model.Product
	for _, candidate := range c.products {
		if candidate.ID == p.ID || candidate.Category != p.Category {
			continue
		}
		out = append(out, candidate.Clone())
	}
	return firstN(out, limit)
}

func matchesCategory(p model.Product, category string) bool {
	return category == "" || category == AllCategories || string(p.Category) == category
}

func firstN(products []model.Product, n int) []model.Product {
	if n >= 0 && len(products) > n {
		return products[:n]
	}
	return products
}
