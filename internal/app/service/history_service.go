package service

import (
	"github.com/ikkim/shopgenie-backend/internal/app/model"
)

// DefaultHistoryLimit is how many recently viewed products are kept.
const DefaultHistoryLimit = 10

// HistoryStore is the most-recent-first list of viewed products, without
// duplicates and never longer than its limit.
type HistoryStore interface {
	Items() []model.Product
	RecordView(product model.Product)
	Restore(items []model.Product)
}

type historyStore struct {
	items []model.Product
	limit int
}

func NewHistoryStore(limit int) HistoryStore {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &historyStore{limit: limit}
}

func (s *historyStore) Items() []model.Product {
	return cloneProducts(s.items)
}

func (s *historyStore) RecordView(product model.Product) {
	items := make([]model.Product, 0, len(s.items)+1)
	items = append(items, product.Clone())
	for _, p := range s.items {
		if p.ID != product.ID {
			items = append(items, p)
		}
	}
	if len(items) > s.limit {
		items = items[:s.limit]
	}
	s.items = items
}

// Restore keeps the first occurrence of every id and the first limit entries.
func (s *historyStore) Restore(items []model.Product) {
	s.items = nil
	for _, p := range items {
		if len(s.items) == s.limit {
			break
		}
		if p.ID == "" || indexOfProduct(s.items, p.ID) >= 0 {
			continue
		}
		s.items = append(s.items, p.Clone())
	}
}
