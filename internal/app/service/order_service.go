package service

import (
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/internal/catalog"
	"github.com/ikkim/shopgenie-backend/internal/pricing"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// OrderHistory supplies past orders. The engine never creates orders, it only
// replays them into the cart.
type OrderHistory interface {
	List() []model.Order
	FindByID(id string) (model.Order, bool)
}

type orderItemRef struct {
	productID string
	selected  model.SelectedOptions
	quantity  int
}

type orderRef struct {
	id     string
	date   string
	status model.OrderStatus
	total  string
	items  []orderItemRef
}

var sampleOrders = []orderRef{
	{
		id:     "ORD-7782",
		date:   "Oct 24, 2023",
		status: model.OrderStatusDelivered,
		total:  "329.99",
		items: []orderItemRef{
			{productID: "1", quantity: 1},
			{productID: "3", selected: model.SelectedOptions{"Color": "Blue", "Size": "M"}, quantity: 1},
		},
	},
	{
		id:     "ORD-9921",
		date:   "Just Now",
		status: model.OrderStatusProcessing,
		total:  "245.50",
		items: []orderItemRef{
			{productID: "2", quantity: 1},
			{productID: "8", quantity: 1},
		},
	},
}

type orderHistory struct {
	orders []model.Order
}

// NewSampleOrderHistory builds the demo order history from catalog products.
// Items are stored at catalog base price so a reorder prices them afresh.
// Items whose product is missing from the catalog are left out.
func NewSampleOrderHistory(c *catalog.Catalog) OrderHistory {
	return NewOrderHistory(buildSampleOrders(c))
}

func NewOrderHistory(orders []model.Order) OrderHistory {
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		out[i] = cloneOrder(o)
	}
	return &orderHistory{orders: out}
}

func buildSampleOrders(c *catalog.Catalog) []model.Order {
	orders := make([]model.Order, 0, len(sampleOrders))
	for _, ref := range sampleOrders {
		order := model.Order{
			ID:     ref.id,
			Date:   ref.date,
			Status: ref.status,
			Total:  decimal.RequireFromString(ref.total),
		}
		for _, item := range ref.items {
			product, ok := c.FindByID(item.productID)
			if !ok {
				logger.Warn("Sample order references unknown product", map[string]interface{}{
					"order_id":   ref.id,
					"product_id": item.productID,
				})
				continue
			}
			order.Items = append(order.Items, model.CartLine{
				Product:         product,
				LineID:          pricing.LineKey(product.ID, item.selected),
				SelectedOptions: item.selected.Clone(),
				Quantity:        item.quantity,
			})
		}
		orders = append(orders, order)
	}
	return orders
}

func (h *orderHistory) List() []model.Order {
	out := make([]model.Order, len(h.orders))
	for i, o := range h.orders {
		out[i] = cloneOrder(o)
	}
	return out
}

func (h *orderHistory) FindByID(id string) (model.Order, bool) {
	for _, o := range h.orders {
		if o.ID == id {
			return cloneOrder(o), true
		}
	}
	return model.Order{}, false
}

func cloneOrder(o model.Order) model.Order {
	out := o
	out.Items = make([]model.CartLine, len(o.Items))
	for i, item := range o.Items {
		out.Items[i] = item.Clone()
	}
	return out
}
