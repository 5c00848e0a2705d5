package service

import (
	"github.com/ikkim/shopgenie-backend/internal/app/model"
)

// WishlistStore is the set of saved products keyed by product id, kept in
// insertion order for display.
type WishlistStore interface {
	Items() []model.Product
	Contains(productID string) bool
	// Toggle removes the product when present and appends it otherwise. It
	// reports whether the product is saved afterwards.
	Toggle(product model.Product) bool
	Restore(items []model.Product)
}

type wishlistStore struct {
	items []model.Product
}

func NewWishlistStore() WishlistStore {
	return &wishlistStore{}
}

func (s *wishlistStore) Items() []model.Product {
	return cloneProducts(s.items)
}

func (s *wishlistStore) Contains(productID string) bool {
	return indexOfProduct(s.items, productID) >= 0
}

func (s *wishlistStore) Toggle(product model.Product) bool {
	if i := indexOfProduct(s.items, product.ID); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		return false
	}
	s.items = append(s.items, product.Clone())
	return true
}

func (s *wishlistStore) Restore(items []model.Product) {
	s.items = nil
	for _, p := range items {
		if p.ID == "" || indexOfProduct(s.items, p.ID) >= 0 {
			continue
		}
		s.items = append(s.items, p.Clone())
	}
}

func indexOfProduct(products []model.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(products []model.Product) []model.Product {
	out := make([]model.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
