package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/engine"
)

type HistoryController struct {
	engine *engine.Engine
}

func NewHistoryController(e *engine.Engine) *HistoryController {
	return &HistoryController{
		engine: e,
	}
}

// GetHistory returns recently viewed products, most recent first
// GET /api/v1/history
func (ctrl *HistoryController) GetHistory(c *gin.Context) {
	items := ctrl.engine.State().History
	c.JSON(http.StatusOK, gin.H{
		"products": items,
		"count":    len(items),
	})
}
