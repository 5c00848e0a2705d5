package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	apperrors "github.com/ikkim/shopgenie-backend/internal/errors"
)

type WishlistController struct {
	engine *engine.Engine
}

func NewWishlistController(e *engine.Engine) *WishlistController {
	return &WishlistController{
		engine: e,
	}
}

// GetWishlist returns the saved products
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	items := ctrl.engine.State().Wishlist
	c.JSON(http.StatusOK, gin.H{
		"products": items,
		"count":    len(items),
	})
}

// ToggleWishlist saves or unsaves a product
// POST /api/v1/wishlist/:product_id/toggle
func (ctrl *WishlistController) ToggleWishlist(c *gin.Context) {
	saved, err := ctrl.engine.ToggleWishlist(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	items := ctrl.engine.State().Wishlist
	c.JSON(http.StatusOK, gin.H{
		"saved":    saved,
		"products": items,
		"count":    len(items),
	})
}
