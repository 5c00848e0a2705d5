package model

import (
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// Order is historical data supplied from outside the engine. The engine only
// replays its items into the cart.
type Order struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Status OrderStatus     `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Items  []CartLine      `json:"items"`
}

// Receipt is what a completed checkout returns.
type Receipt struct {
	Lines  []CartLine `json:"lines"`
	Totals CartTotals `json:"totals"`
}
