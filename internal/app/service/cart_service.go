package service

import (
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/internal/pricing"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
)

// CartStore owns the ordered cart lines. It is not safe for concurrent use;
// the engine serializes access. Mutators report whether anything changed so
// the caller knows when to persist.
type CartStore interface {
	Lines() []model.CartLine
	Totals() model.CartTotals
	Add(product model.Product, selected model.SelectedOptions, quantity int) model.CartLine
	UpdateQuantity(lineID string, delta int) bool
	Remove(lineID string) bool
	Clear() bool
	Reorder(order model.Order) int
	Restore(lines []model.CartLine)
}

// MaxLineQuantity caps the units of one cart line. Adds and merges past it
// saturate instead of overflowing.
const MaxLineQuantity = 999

// addQuantity returns q+delta clamped to [1, MaxLineQuantity]. q is assumed to
// be in range already.
func addQuantity(q, delta int) int {
	switch {
	case delta > MaxLineQuantity-q:
		return MaxLineQuantity
	case delta < 1-q:
		return 1
	}
	return q + delta
}

type cartStore struct {
	lines    []model.CartLine
	shipping pricing.ShippingPolicy
}

func NewCartStore(shipping pricing.ShippingPolicy) CartStore {
	return &cartStore{shipping: shipping}
}

func (s *cartStore) Lines() []model.CartLine {
	out := make([]model.CartLine, len(s.lines))
	for i, line := range s.lines {
		out[i] = line.Clone()
	}
	return out
}

func (s *cartStore) Totals() model.CartTotals {
	return s.shipping.Totals(s.lines)
}

func (s *cartStore) indexOf(lineID string) int {
	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			return i
		}
	}
	return -1
}

// Add merges into the line with the same identity or appends a new one.
// The unit price is computed here once and never recomputed.
func (s *cartStore) Add(product model.Product, selected model.SelectedOptions, quantity int) model.CartLine {
	quantity = addQuantity(0, quantity)
	selected = selected.Clone()
	lineID := pricing.LineKey(product.ID, selected)

	if i := s.indexOf(lineID); i >= 0 {
		s.lines[i].Quantity = addQuantity(s.lines[i].Quantity, quantity)
		logger.Debug("Cart line quantity increased", map[string]interface{}{
			"cart_item_id": lineID,
			"quantity":     s.lines[i].Quantity,
		})
		return s.lines[i].Clone()
	}

	snapshot := product.Clone()
	snapshot.Price = pricing.EffectivePrice(product, selected)
	line := model.CartLine{
		Product:         snapshot,
		LineID:          lineID,
		SelectedOptions: selected,
		Quantity:        quantity,
	}
	s.lines = append(s.lines, line)

	logger.Debug("Cart line added", map[string]interface{}{
		"cart_item_id": lineID,
		"price":        snapshot.Price.String(),
		"quantity":     quantity,
	})
	return line.Clone()
}

// UpdateQuantity floors at 1 and saturates at MaxLineQuantity; removing a
// line is a separate operation.
func (s *cartStore) UpdateQuantity(lineID string, delta int) bool {
	i := s.indexOf(lineID)
	if i < 0 {
		return false
	}
	quantity := addQuantity(s.lines[i].Quantity, delta)
	if quantity == s.lines[i].Quantity {
		return false
	}
	s.lines[i].Quantity = quantity
	return true
}

func (s *cartStore) Remove(lineID string) bool {
	i := s.indexOf(lineID)
	if i < 0 {
		return false
	}
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	return true
}

func (s *cartStore) Clear() bool {
	if len(s.lines) == 0 {
		return false
	}
	s.lines = nil
	return true
}

// Reorder replays every item of a past order. Items keep the options they
// were bought with even if the catalog no longer offers them. It returns the
// number of items replayed.
func (s *cartStore) Reorder(order model.Order) int {
	for _, item := range order.Items {
		s.Add(item.Product, item.SelectedOptions, item.Quantity)
	}
	return len(order.Items)
}

// Restore replaces the lines with a persisted snapshot. Keys are re-derived,
// quantities clamped to [1, MaxLineQuantity], and lines sharing a key merged, so a snapshot
// written by an older build cannot break the one-line-per-key rule.
func (s *cartStore) Restore(lines []model.CartLine) {
	s.lines = nil
	for _, line := range lines {
		if line.ID == "" {
			continue
		}
		line = line.Clone()
		line.LineID = pricing.LineKey(line.ID, line.SelectedOptions)
		line.Quantity = addQuantity(0, line.Quantity)
		if i := s.indexOf(line.LineID); i >= 0 {
			s.lines[i].Quantity = addQuantity(s.lines[i].Quantity, line.Quantity)
			continue
		}
		s.lines = append(s.lines, line)
	}
}
