package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	apperrors "github.com/ikkim/shopgenie-backend/internal/errors"
)

type OrderController struct {
	engine *engine.Engine
}

func NewOrderController(e *engine.Engine) *OrderController {
	return &OrderController{
		engine: e,
	}
}

// ListOrders returns the order history
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	orders := ctrl.engine.Orders().List()
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one past order
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	order, ok := ctrl.engine.Orders().FindByID(c.Param("id"))
	if !ok {
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		return
	}
	c.JSON(http.StatusOK, order)
}

// Reorder puts every item of a past order back in the cart
// POST /api/v1/orders/:id/reorder
func (ctrl *OrderController) Reorder(c *gin.Context) {
	added, err := ctrl.engine.Reorder(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	state := ctrl.engine.State()
	c.JSON(http.StatusOK, gin.H{
		"added":      added,
		"cart_items": state.Cart,
		"totals":     state.Totals,
	})
}
