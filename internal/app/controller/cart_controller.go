package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	apperrors "github.com/ikkim/shopgenie-backend/internal/errors"
	"github.com/ikkim/shopgenie-backend/internal/middleware"
)

type CartController struct {
	engine *engine.Engine
}

func NewCartController(e *engine.Engine) *CartController {
	return &CartController{
		engine: e,
	}
}

type AddToCartRequest struct {
	ProductID       string                `json:"product_id" binding:"required"`
	SelectedOptions model.SelectedOptions `json:"selected_options"`
	Quantity        int                   `json:"quantity" binding:"omitempty,gt=0,max=999"`
}

type UpdateCartRequest struct {
	Delta int `json:"delta" binding:"required,min=-999,max=999"`
}

func (ctrl *CartController) respondCart(c *gin.Context, status int) {
	state := ctrl.engine.State()
	c.JSON(status, gin.H{
		"cart_items": state.Cart,
		"count":      len(state.Cart),
		"totals":     state.Totals,
	})
}

// GetCart returns the cart with derived totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	ctrl.respondCart(c, http.StatusOK)
}

// AddToCart adds a product with an option selection
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	line, err := ctrl.engine.AddToCart(c.Request.Context(), req.ProductID, req.SelectedOptions, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	state := ctrl.engine.State()
	c.JSON(http.StatusCreated, gin.H{
		"cart_item": line,
		"totals":    state.Totals,
	})
}

// UpdateCartItem changes a line's quantity by delta
// PATCH /api/v1/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "delta must be a non-zero number between -999 and 999")
		return
	}

	if err := ctrl.engine.UpdateQuantity(c.Request.Context(), c.Param("id"), req.Delta); err != nil {
		apperrors.Respond(c, err)
		return
	}
	ctrl.respondCart(c, http.StatusOK)
}

// RemoveFromCart deletes a line; unknown lines are ignored
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	if err := ctrl.engine.RemoveFromCart(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	ctrl.respondCart(c, http.StatusOK)
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	if err := ctrl.engine.ClearCart(c.Request.Context()); err != nil {
		apperrors.Respond(c, err)
		return
	}
	ctrl.respondCart(c, http.StatusOK)
}

// Checkout simulates payment and empties the cart
// POST /api/v1/cart/checkout
func (ctrl *CartController) Checkout(c *gin.Context) {
	receipt, err := ctrl.engine.Checkout(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"receipt": receipt,
	})
}
